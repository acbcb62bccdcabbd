package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/utilization/modules/planning/domain/format"
	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/modules/planning/domain/upload"
	"github.com/iota-uz/utilization/pkg/blobstore"
	"github.com/iota-uz/utilization/pkg/eventbus"
	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

var ErrInvalidEvent = errors.New("invalid object finalized event")

// Recorder receives import observations.
type Recorder interface {
	ImportFinished(format string, err error, took time.Duration)
	Rows(format string, matched, unmatched, duplicate int)
	EventIgnored()
}

type nopRecorder struct{}

func (nopRecorder) ImportFinished(string, error, time.Duration) {}
func (nopRecorder) Rows(string, int, int, int)                  {}
func (nopRecorder) EventIgnored()                               {}

// Ingestor reacts to finished uploads: it routes the object path to a format,
// downloads the file and imports it.
type Ingestor struct {
	registry  *format.Registry
	blobs     blobstore.Store
	importer  *Importer
	publisher eventbus.EventBus
	metrics   Recorder
	log       *logrus.Logger
}

func NewIngestor(
	registry *format.Registry,
	blobs blobstore.Store,
	importer *Importer,
	publisher eventbus.EventBus,
	metrics Recorder,
	log *logrus.Logger,
) *Ingestor {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ingestor{
		registry:  registry,
		blobs:     blobs,
		importer:  importer,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
	}
}

// HandleObjectFinalized imports the object named by ev. Objects outside the upload
// layout are ignored. Failures are logged with the object path and returned so the
// caller's retry policy applies.
func (s *Ingestor) HandleObjectFinalized(ctx context.Context, ev upload.ObjectFinalized) error {
	logger := s.log.WithFields(logrus.Fields{"bucket": ev.Bucket, "path": ev.Path})
	if err := ev.Validate(); err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidEvent, err)
		logger.WithError(err).Error("rejecting upload event")
		return err
	}

	u, ok := s.registry.Route(ev.Path)
	if !ok {
		s.metrics.EventIgnored()
		logger.Debug("object outside upload layout, ignoring")
		return nil
	}
	kind := string(u.Format.Kind)
	logger = logger.WithFields(logrus.Fields{"format": kind, "user": u.UserID})

	start := time.Now()
	p, err := s.ingest(ctx, ev, u)
	took := time.Since(start)
	s.metrics.ImportFinished(kind, err, took)
	if err != nil {
		logger.WithError(err).Error("import failed")
		return err
	}

	s.metrics.Rows(kind, p.Stats.Matched, p.Stats.Unmatched, p.Stats.Duplicate)
	if s.publisher != nil {
		s.publisher.Publish(&plan.ImportedEvent{
			Plan:     p,
			Entries:  p.Stats.Entries(),
			UserID:   u.UserID,
			Duration: took,
		})
	}
	logger.WithFields(logrus.Fields{"plan": p.ID, "took": took}).Info("upload imported")
	return nil
}

func (s *Ingestor) ingest(ctx context.Context, ev upload.ObjectFinalized, u format.Upload) (*plan.Plan, error) {
	blob, err := s.blobs.Download(ctx, ev.Bucket, ev.Path)
	if err != nil {
		return nil, fmt.Errorf("download %s/%s: %w", ev.Bucket, ev.Path, err)
	}
	if err := spreadsheet.CheckContentType(blob); err != nil {
		return nil, fmt.Errorf("%s: %w", ev.Path, err)
	}
	return s.importer.ImportFile(ctx, blob, u.Format, ev.Path)
}
