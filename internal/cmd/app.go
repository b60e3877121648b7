package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/learnsphere/client/internal/backend"
	"github.com/learnsphere/client/internal/config"
	"github.com/learnsphere/client/internal/handlers"
	"github.com/learnsphere/client/internal/metrics"
	"github.com/learnsphere/client/internal/repositories"
	"github.com/learnsphere/client/internal/services"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app holds the process-wide components shared by every command
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	registry  *prometheus.Registry
	collector *metrics.Collector
	client    *backend.Client
	storage   services.LocalStorage
	pinger    handlers.Pinger
	session   *services.SessionManager
	prefs     *services.PreferenceStore
	closers   []func() error
}

// newApp opens local storage, connects the backend client and loads the cached session and preferences
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.collector = metrics.NewCollector(a.registry)

	if err := a.openStorage(ctx); err != nil {
		return nil, err
	}

	client, err := backend.NewClient(cfg.Backend.BaseURL, backend.Options{
		Timeout:   cfg.Backend.Timeout,
		RateLimit: cfg.Backend.RateLimit,
		RateBurst: cfg.Backend.RateBurst,
	}, a.collector, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	a.client = client

	a.session = services.NewSessionManager(client, a.storage, logger, services.SessionOptions{
		PlaceholderAvatar: cfg.Session.PlaceholderAvatar,
		StalePolicy:       cfg.Session.StalePolicy,
		Recorder:          a.collector,
	})
	if err := a.session.Init(ctx); err != nil {
		logger.Warn("failed to load cached session", zap.Error(err))
	}

	a.prefs = services.NewPreferenceStore(a.storage, logger)
	if err := a.prefs.Load(ctx); err != nil {
		logger.Warn("failed to load preferences", zap.Error(err))
	}

	return a, nil
}

func (a *app) openStorage(ctx context.Context) error {
	switch a.cfg.Storage.Driver {
	case config.StorageDriverMemory:
		a.storage = repositories.NewMemoryStorageRepository()
		return nil

	case config.StorageDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr(),
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.storage = repositories.NewRedisStorageRepository(client, a.cfg.Redis.KeyPrefix)
		a.pinger = redisPinger{client: client}
		a.closers = append(a.closers, client.Close)
		return nil

	case config.StorageDriverSQLite, config.StorageDriverMySQL:
		db, err := connectDB(a.cfg.Storage.Driver, a.cfg.DSN())
		if err != nil {
			return err
		}
		if err := repositories.RunMigrations(db, a.cfg.Storage.Driver); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		a.storage = repositories.NewSQLStorageRepository(db)
		a.pinger = db
		a.closers = append(a.closers, db.Close)
		return nil
	}

	return fmt.Errorf("unsupported storage driver: %s", a.cfg.Storage.Driver)
}

// close releases the storage connections
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// connectDB connects to the database
func connectDB(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == config.StorageDriverSQLite {
		// One writer at a time keeps sqlite from returning "database is locked"
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// redisPinger adapts a Redis client to handlers.Pinger
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
