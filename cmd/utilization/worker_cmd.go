package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/modules/planning/presentation/controllers"
	"github.com/iota-uz/utilization/modules/planning/services"
	"github.com/iota-uz/utilization/pkg/metrics"
	"github.com/iota-uz/utilization/pkg/middleware"
	"github.com/iota-uz/utilization/pkg/server"
)

type workerOptions struct {
	noHTTP bool
}

func newWorkerCmd(env *cliEnv) *cobra.Command {
	var opts workerOptions

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume upload events from the queue and import every routed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWorker(ctx, env, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.noHTTP, "no-http", false, "Do not serve the HTTP endpoints")
	return cmd
}

type importedLine struct {
	Status   string     `json:"status"`
	PlanID   string     `json:"plan_id"`
	Format   string     `json:"format"`
	Period   string     `json:"period"`
	Source   string     `json:"source"`
	UserID   string     `json:"user_id"`
	Entries  int        `json:"entries"`
	Stats    plan.Stats `json:"stats"`
	Duration string     `json:"duration"`
}

func runWorker(ctx context.Context, env *cliEnv, opts workerOptions, out io.Writer) error {
	a, err := env.openWithStore(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	blobs, err := a.blobs()
	if err != nil {
		return err
	}
	if err := a.bus.Subscribe(func(e *plan.ImportedEvent) {
		_ = writeJSONLine(out, importedLine{
			Status:   "imported",
			PlanID:   e.Plan.ID,
			Format:   string(e.Plan.Format),
			Period:   e.Plan.PeriodKey,
			Source:   e.Plan.SourcePath,
			UserID:   e.UserID,
			Entries:  e.Entries,
			Stats:    e.Plan.Stats,
			Duration: e.Duration.String(),
		})
	}); err != nil {
		return err
	}

	ingestor := services.NewIngestor(a.registry, blobs, a.importer(), a.bus, metrics.Recorder{}, a.log)

	if !opts.noHTTP {
		srv := newWorkerServer(a)
		go func() {
			a.log.WithField("addr", srv.Addr).Info("serving worker endpoints")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.WithError(err).Error("worker http server stopped")
			}
		}()
		defer shutdown(srv, a.log)
	}

	q, err := a.queue()
	if err != nil {
		return err
	}
	if err := q.Run(ctx, ingestor.HandleObjectFinalized); err != nil {
		return withCode(exitQueue, err)
	}
	return nil
}

func newWorkerServer(a *app) *http.Server {
	routes := []server.Controller{
		server.NewHealthController(),
		controllers.NewPlanController(a.registry, services.NewPlanService(a.plans), a.log),
	}
	if a.conf.Prometheus.Enabled {
		routes = append(routes, metrics.NewController(a.conf.Prometheus.Path))
	}
	s := server.NewHTTPServer(routes, middleware.WithLogger(a.log, middleware.DefaultLoggerOptions()))
	return s.Server(a.conf.SocketAddress)
}

func shutdown(srv *http.Server, log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("worker http server shutdown")
	}
}
