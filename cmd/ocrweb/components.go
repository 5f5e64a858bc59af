package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ocrweb/internal/config"
	"ocrweb/internal/database"
	"ocrweb/internal/database/migration"
	"ocrweb/internal/pipeline"
	"ocrweb/internal/repository"
	"ocrweb/internal/repository/sqldb"
	"ocrweb/internal/storage"
)

// openLedger connects and migrates the upload ledger. It returns a nil
// repository when no driver is configured.
func openLedger(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (repository.UploadRepository, func(), error) {
	if !cfg.Enabled() {
		logger.Info("ledger_disabled")
		return nil, func() {}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	if err := migrate(ctx, db, cfg.Driver, logger); err != nil {
		closeDB()
		return nil, nil, err
	}
	return sqldb.NewUploadSQL(db), closeDB, nil
}

func migrate(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return migration.EnsureMigrated(ctx, db, driver, logger)
}

// openArchive returns nil when mirroring is not configured or the bucket
// cannot be reached; the application runs without it.
func openArchive(cfg config.MinIOConfig, logger *slog.Logger) storage.Archive {
	if cfg.Endpoint == "" {
		return nil
	}
	archive, err := storage.NewMinIO(cfg)
	if err != nil {
		logger.Warn("archive_disabled", "endpoint", cfg.Endpoint, "error", err.Error())
		return nil
	}
	logger.Info("archive_enabled", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return archive
}

// newRecognizer probes the OCR engine once. An unavailable engine is not an
// error. PDF uploads are routed to the document engine either way.
func newRecognizer(cfg config.EngineConfig, reg prometheus.Registerer, logger *slog.Logger) (*pipeline.Adapter, error) {
	engine, initErr := pipeline.NewTesseract(pipeline.Options{
		Languages:      cfg.Languages,
		TessdataPrefix: cfg.TessdataPrefix,
		PageSegMode:    cfg.PageSegMode,
	})
	opts := pipeline.AdapterOptions{
		MaxConcurrent: cfg.MaxConcurrent,
		Registerer:    reg,
		Logger:        logger,
	}
	if docs, err := pipeline.NewDocument(); err != nil {
		logger.Warn("document_engine_disabled", "error", err.Error())
	} else {
		opts.Documents = docs
	}
	return pipeline.NewAdapter(engine, initErr, opts)
}
