package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/utilization/modules/planning/domain/format"
	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	planpersistence "github.com/iota-uz/utilization/modules/planning/infrastructure/persistence"
	"github.com/iota-uz/utilization/modules/planning/infrastructure/queue"
	"github.com/iota-uz/utilization/modules/planning/services"
	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/alias"
	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/member"
	rosterpersistence "github.com/iota-uz/utilization/modules/roster/infrastructure/persistence"
	rosterservices "github.com/iota-uz/utilization/modules/roster/services"
	"github.com/iota-uz/utilization/pkg/blobstore"
	"github.com/iota-uz/utilization/pkg/configuration"
	"github.com/iota-uz/utilization/pkg/docstore"
	"github.com/iota-uz/utilization/pkg/docstore/memory"
	"github.com/iota-uz/utilization/pkg/docstore/postgres"
	"github.com/iota-uz/utilization/pkg/eventbus"
)

// cliEnv carries what every command shares: how configuration is obtained and
// the global flags.
type cliEnv struct {
	loadConfig func() (*configuration.Configuration, error)
	store      string
}

// app holds the dependencies of one command run.
type app struct {
	conf     *configuration.Configuration
	log      *logrus.Logger
	pool     *pgxpool.Pool
	redis    *redis.Client
	store    docstore.Store
	registry *format.Registry
	bus      eventbus.EventBus
	backend  string

	members member.Repository
	aliases alias.Repository
	plans   plan.Repository
}

// open loads configuration. Commands that read or write documents call openStore.
func (e *cliEnv) open() (*app, error) {
	conf, err := e.loadConfig()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	a := &app{
		conf:     conf,
		log:      conf.Logger(),
		registry: format.DefaultRegistry(),
	}
	a.bus = eventbus.NewEventPublisher(a.log)
	if conf.Import.FormatsFile != "" {
		if err := a.registry.LoadOverrides(conf.Import.FormatsFile); err != nil {
			return nil, withCode(exitUsage, err)
		}
	}

	a.backend = strings.ToLower(strings.TrimSpace(e.store))
	if a.backend == "" {
		a.backend = conf.DocStore
	}
	return a, nil
}

// openWithStore is open followed by openStore.
func (e *cliEnv) openWithStore(ctx context.Context) (*app, error) {
	a, err := e.open()
	if err != nil {
		return nil, err
	}
	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// openStore connects the document store backend and the repositories over it.
func (a *app) openStore(ctx context.Context) error {
	switch a.backend {
	case "memory":
		a.store = memory.New()
	case "postgres":
		pool, err := connectDB(ctx, a.conf)
		if err != nil {
			return withCode(exitDB, err)
		}
		a.pool = pool
		a.store = postgres.New(pool)
	default:
		return withCode(exitUsage, fmt.Errorf("unsupported --store %q (expected postgres|memory)", a.backend))
	}

	a.members = rosterpersistence.NewMemberRepository(a.store)
	a.aliases = rosterpersistence.NewAliasRepository(a.store)
	a.plans = planpersistence.NewPlanRepository(a.store)
	return nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("failed to close redis client")
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func connectDB(ctx context.Context, conf *configuration.Configuration) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return pool, nil
}

// format resolves a --format flag value.
func (a *app) format(name string) (format.Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if f, ok := a.registry.Get(format.Kind(name)); ok {
		return f, nil
	}
	known := []string{string(format.KindEinsatzplan), string(format.KindWorkload)}
	sort.Strings(known)
	return format.Format{}, withCode(exitUsage, fmt.Errorf("unknown --format %q (expected %s)", name, strings.Join(known, "|")))
}

func (a *app) matcher() *rosterservices.Matcher {
	return rosterservices.NewMatcher(a.members, a.aliases, a.log)
}

func (a *app) importer() *services.Importer {
	m := a.matcher()
	return services.NewImporter(a.plans, m, a.log,
		services.WithBatchSize(a.conf.Import.BatchSize),
		services.WithSuggestions(m, a.conf.Import.SuggestionLimit),
	)
}

func (a *app) blobs() (*blobstore.FS, error) {
	fs, err := blobstore.NewFS(a.conf.BlobRoot)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return fs, nil
}

func (a *app) queue() (*queue.Queue, error) {
	if a.redis == nil {
		opts, err := a.conf.Queue.RedisOptions()
		if err != nil {
			return nil, withCode(exitUsage, err)
		}
		a.redis = redis.NewClient(opts)
	}
	return queue.New(a.redis, a.conf.Queue.Key, a.conf.Queue.PollTimeout, a.log), nil
}
