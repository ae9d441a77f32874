package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/lecture-feedback-backend/internal/data/db"
	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	"github.com/yungbote/lecture-feedback-backend/internal/http"
	"github.com/yungbote/lecture-feedback-backend/internal/observability"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/realtime"
	"github.com/yungbote/lecture-feedback-backend/internal/seed"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    repos.Set
	Services Services
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics
	Clients  Clients

	shutdownOtel func(context.Context) error
	cancel       context.CancelFunc
}

// New builds the full application from the environment. The caller owns
// log and must Sync it.
func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	return NewWithConfig(ctx, log, cfg)
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	theDB, err := OpenDB(log, cfg)
	if err != nil {
		return nil, err
	}

	metrics := observability.Init(cfg.MetricsEnabled)
	if metrics != nil {
		if sqlDB, err := theDB.DB(); err == nil {
			if err := metrics.RegisterDBStats(sqlDB, cfg.DBDriver); err != nil {
				log.Warn("db stats collector not registered", "error", err)
			}
		}
	}
	shutdownOtel := observability.InitOTel(ctx, log, cfg.Otel)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = shutdownOtel(ctx)
		return nil, err
	}

	hub := realtime.NewSSEHub(log)
	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.EventBus != nil {
		emitter = &services.BusEmitter{Bus: clients.EventBus, Log: log}
	}

	reposet := repos.NewSet(theDB, log)
	serviceset := WireServices(theDB, log, reposet, ServiceDeps{
		Generator:  clients.Generator,
		Emitter:    emitter,
		Metrics:    metrics,
		Generation: cfg.Generation,
	})

	server := http.NewServer(RouterConfig(log, cfg, serviceset, hub, metrics))

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		SSEHub:       hub,
		Metrics:      metrics,
		Clients:      clients,
		shutdownOtel: shutdownOtel,
	}, nil
}

// OpenDB opens the configured store and brings the schema up to date.
func OpenDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	theDB, err := db.Open(log, cfg.DBDriver, cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		return nil, fmt.Errorf("%s automigrate: %w", cfg.DBDriver, err)
	}
	return theDB, nil
}

// Start launches the background loops: the cross-instance event forwarder
// and the redis stats collector.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.EventBus != nil {
		if err := a.Clients.EventBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start event forwarder: %w", err)
		}
		a.Log.Info("Redis event forwarder started", "channel", a.Cfg.RedisChannel)
	}
	if a.Metrics != nil && a.Cfg.RedisAddr != "" {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr, 15*time.Second)
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Listening", "addr", addr)
	return a.Server.Run(addr)
}

// Close stops the listener and background loops. Safe to call more than once.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.shutdownOtel != nil {
		if err := a.shutdownOtel(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
		a.shutdownOtel = nil
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// Seed applies the YAML seed file at path through the wired services.
func (a *App) Seed(ctx context.Context, path string) (seed.Result, error) {
	f, err := seed.Load(path)
	if err != nil {
		return seed.Result{}, err
	}
	res, err := seed.Apply(ctx, a.Log, f, a.Services.Lectures, a.Services.Feedback, a.Services.Query)
	if err != nil {
		return res, fmt.Errorf("apply seed %s: %w", path, err)
	}
	a.Log.Info("Seed applied",
		"file", path,
		"enrollments", res.Enrollments,
		"lectures_created", res.LecturesCreated,
		"lectures_skipped", res.LecturesSkipped,
	)
	return res, nil
}
