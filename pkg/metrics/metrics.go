package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultPath = "/debug/prometheus"

type ingestMetrics struct {
	importsTotal   *prometheus.CounterVec
	rowsTotal      *prometheus.CounterVec
	eventsIgnored  prometheus.Counter
	importDuration *prometheus.HistogramVec
}

var ingestSingleton = sync.OnceValue(func() *ingestMetrics {
	return &ingestMetrics{
		importsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "utilization",
			Name:      "imports_total",
			Help:      "Total number of spreadsheet imports by format and result.",
		}, []string{"format", "result"}),
		rowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "utilization",
			Name:      "import_rows_total",
			Help:      "Total number of imported rows by format and statistics bucket.",
		}, []string{"format", "bucket"}),
		eventsIgnored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "utilization",
			Name:      "events_ignored_total",
			Help:      "Object finalized events whose path matches no known format.",
		}),
		importDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "utilization",
			Name:      "import_duration_seconds",
			Help:      "Duration of one file import including persistence.",
			Buckets: []float64{
				0.05, 0.1, 0.25, 0.5,
				1, 2.5, 5, 10, 30, 60,
			},
		}, []string{"format", "result"}),
	}
})

// Recorder receives ingest observations. The zero value is usable.
type Recorder struct{}

func (Recorder) ImportFinished(format string, err error, took time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m := ingestSingleton()
	m.importsTotal.WithLabelValues(format, result).Inc()
	m.importDuration.WithLabelValues(format, result).Observe(took.Seconds())
}

func (Recorder) Rows(format string, matched, unmatched, duplicate int) {
	m := ingestSingleton()
	m.rowsTotal.WithLabelValues(format, "matched").Add(float64(matched))
	m.rowsTotal.WithLabelValues(format, "unmatched").Add(float64(unmatched))
	m.rowsTotal.WithLabelValues(format, "duplicate").Add(float64(duplicate))
}

func (Recorder) EventIgnored() {
	ingestSingleton().eventsIgnored.Inc()
}

// Register mounts the prometheus handler on r.
func Register(r *mux.Router, path string) {
	if path == "" {
		path = DefaultPath
	}
	r.Handle(path, promhttp.Handler()).Methods(http.MethodGet)
}

// Controller exposes Register as an HTTP controller.
type Controller struct {
	path string
}

func NewController(path string) *Controller {
	if path == "" {
		path = DefaultPath
	}
	return &Controller{path: path}
}

func (c *Controller) Key() string {
	return c.path
}

func (c *Controller) Register(r *mux.Router) {
	Register(r, c.path)
}
