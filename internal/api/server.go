package api

import (
    "context"
    "os"
    "strings"

    "github.com/sirupsen/logrus"

    "tourplan/internal/cache"
    "tourplan/internal/config"
    "tourplan/internal/geo"
    "tourplan/internal/logger"
    "tourplan/internal/model"
    "tourplan/internal/planner"
    "tourplan/internal/reconcile"
    "tourplan/internal/report"
    "tourplan/internal/routing"
    "tourplan/internal/store"
)

type Server struct {
    Planner *planner.Planner
    Store   store.Store
    Report  *report.Builder
    Broker  EventBroker
    Log     *logrus.Logger

    ready func(ctx context.Context) error
}

// NewServer wires the engine from config. If DATABASE_URL is unset, the
// in-memory store is used; likewise Redis for snapshot and event fanout
// only when REDIS_URL is set.
func NewServer(cfg config.Config) (*Server, error) {
    log := logger.L()

    var s store.Store
    var ready func(ctx context.Context) error
    if strings.TrimSpace(cfg.DatabaseURL) == "" {
        s = store.NewMemory()
    } else {
        sp, err := store.NewPostgres(cfg.DatabaseURL)
        if err != nil {
            return nil, err
        }
        // Run migrations (dev helper)
        if os.Getenv("DB_MIGRATE") != "false" {
            if err := sp.MigrateDir("db/migrations"); err != nil {
                log.WithError(err).Warn("migrations failed")
            }
        }
        s = sp
        ready = sp.Ping
    }

    var snap cache.Snapshot
    var broker EventBroker
    if cfg.RedisURL != "" {
        if rc, err := cache.NewRedis(cfg.RedisURL); err == nil {
            snap = rc
        } else {
            log.WithError(err).Warn("redis snapshot unavailable, using memory")
            snap = cache.NewMemory()
        }
        if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
            broker = rb
        } else {
            broker = NewBroker()
        }
    } else {
        snap = cache.NewMemory()
        broker = NewBroker()
    }

    router := routing.NewClient(cfg.RouterURL)
    pl := planner.New(planner.Options{
        Geocoder:   geo.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderRPS),
        Router:     router,
        Store:      s,
        Snapshot:   snap,
        SessionKey: cfg.SessionKey,
        Log:        log,
        OnRouteUpdate: func(ri model.RouteInfo) {
            broker.Publish(routeTopic, SSEEvent{Type: "route.updated", Data: map[string]any{"route": ri}})
        },
    })
    if err := pl.Load(context.Background()); err != nil {
        log.WithError(err).Warn("stop snapshot load failed, starting empty")
    }

    return &Server{
        Planner: pl,
        Store:   s,
        Report:  report.NewBuilder(s, router, cfg.RatePerMile),
        Broker:  broker,
        Log:     log,
        ready:   ready,
    }, nil
}

// NewReconcileWorker builds the background worker that repairs gigs
// whose tour link failed during commit.
func (s *Server) NewReconcileWorker() *reconcile.Worker {
    return reconcile.NewWorker(s.Store)
}
