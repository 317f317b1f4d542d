package main

import (
	"context"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"metadata-repository/internal/analysis"
	"metadata-repository/internal/archive"
	"metadata-repository/internal/auth"
	"metadata-repository/internal/config"
	"metadata-repository/internal/database"
	"metadata-repository/internal/events"
	"metadata-repository/internal/intake"
	"metadata-repository/internal/logging"
	"metadata-repository/internal/rules"
)

// app holds the service handles shared by the subcommands.
type app struct {
	cfg    *config.Config
	logs   *logging.Loggers
	engine *analysis.Engine

	db     *gorm.DB
	store  archive.ObjectStore
	events *events.NATSPublisher

	intake   *intake.Service
	auth     *auth.Service
	datalake *archive.Datalake
	backup   *archive.LogArchiver
}

// newApp loads the configuration and connects every configured backend.
// An unreachable database or object store is logged and left disabled so
// submissions are still accepted into the local log.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logs, err := logging.New(logging.Config{Dir: cfg.LogDir, Level: cfg.LogLevel})
	if err != nil {
		return nil, errs.Wrap(err)
	}
	log := logs.Activity

	set, err := rules.Load(cfg.RulesFile)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	engine := analysis.New(set)

	db, err := database.Open(cfg.DB)
	switch {
	case err != nil:
		log.Warn("[DB_ERROR] document store unavailable, continuing with local log only", zap.Error(err))
		db = nil
	case db == nil:
		log.Info("document store not configured")
	default:
		log.Info("connected to document store", zap.String("driver", cfg.DB.Driver))
	}

	store, err := openStore(ctx, cfg.Archive)
	switch {
	case err != nil:
		log.Warn("[ARCHIVE_ERROR] object store unavailable", zap.Error(err))
		store = nil
	case store == nil:
		log.Info("object store not configured")
	default:
		log.Info("object store ready", zap.String("backend", cfg.Archive.Backend))
	}

	in := intake.NewService(db, log, engine.Normalizer, engine.Classifier)
	var pub *events.NATSPublisher
	if cfg.NATSURL != "" {
		pub, err = events.Connect(cfg.NATSURL, log)
		if err != nil {
			log.Warn("[EVENT_ERROR] event publishing disabled", zap.Error(err))
		} else {
			in.WithEvents(pub)
			log.Info("publishing dataset events", zap.String("stream", events.StreamName))
		}
	}

	return &app{
		cfg:      cfg,
		logs:     logs,
		engine:   engine,
		db:       db,
		store:    store,
		events:   pub,
		intake:   in,
		auth:     auth.NewService(db, log),
		datalake: archive.NewDatalake(store, engine.Normalizer, log),
		backup:   archive.NewLogArchiver(store, logs.Path, log, logs.OutOfBand),
	}, nil
}

// openStore builds the object store selected by cfg. It returns a nil store
// when no backend is configured.
func openStore(ctx context.Context, cfg config.ArchiveConfig) (archive.ObjectStore, error) {
	switch cfg.Backend {
	case config.BackendGCS:
		s, err := archive.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSKeyFile)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendS3:
		s, err := archive.NewS3Store(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}

func (a *app) Close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logs.OutOfBand.Warn("draining NATS connection", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logs.OutOfBand.Warn("closing object store", zap.Error(err))
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.logs.Close()
}
