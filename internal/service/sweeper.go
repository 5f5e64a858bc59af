package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ocrweb/internal/repository"
	"ocrweb/internal/storage"
)

// SweepReport summarizes one retention pass.
type SweepReport struct {
	Files   []string
	Records int64
}

// Sweeper deletes uploads older than the retention window from the media root
// and from the ledger when one is configured.
type Sweeper struct {
	store     storage.Storage
	ledger    repository.UploadRepository
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewSweeper constructs a Sweeper. A zero retention disables sweeping.
func NewSweeper(store storage.Storage, ledger repository.UploadRepository, retention time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:     store,
		ledger:    ledger,
		retention: retention,
		logger:    logger.With("component", "sweeper"),
		now:       time.Now,
	}
}

// Enabled reports whether a retention window is set.
func (s *Sweeper) Enabled() bool { return s.retention > 0 }

// RunOnce performs a single retention pass. Files are removed first and only
// the ledger rows of the files actually removed are deleted; a ledger error
// does not undo the file removals.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	if !s.Enabled() {
		return report, nil
	}
	cutoff := s.now().Add(-s.retention)

	files, fileErr := s.store.Sweep(ctx, cutoff)
	report.Files = files

	var ledgerErr error
	if s.ledger != nil && len(files) > 0 {
		report.Records, ledgerErr = s.ledger.DeleteByNames(ctx, files)
	}

	err := errors.Join(fileErr, ledgerErr)
	if err != nil {
		s.logger.Error("sweep_failed", "cutoff", cutoff, "files_removed", len(report.Files), "error", err.Error())
		return report, err
	}
	s.logger.Info("sweep_completed", "cutoff", cutoff, "files_removed", len(report.Files), "records_removed", report.Records)
	return report, nil
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if !s.Enabled() || interval <= 0 {
		s.logger.Info("sweeper_disabled")
		return
	}

	_, _ = s.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		}
	}
}
