package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ocrweb/internal/service"
	"ocrweb/internal/storage"
)

func newSweepCmd(env *appEnv) *cobra.Command {
	var retentionHours int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete stored uploads older than the retention window and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := env.cfg, env.logger
			if cmd.Flags().Changed("retention-hours") {
				cfg.Media.RetentionHours = retentionHours
			}
			if cfg.Media.RetentionHours <= 0 {
				return fmt.Errorf("retention is disabled; set MEDIA_RETENTION_HOURS or --retention-hours")
			}

			store, err := storage.NewLocal(cfg.Media.Root, cfg.Media.URL)
			if err != nil {
				return err
			}
			ledger, closeLedger, err := openLedger(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer closeLedger()

			sweeper := service.NewSweeper(store, ledger, time.Duration(cfg.Media.RetentionHours)*time.Hour, logger)
			report, err := sweeper.RunOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d file(s), %d ledger row(s)\n", len(report.Files), report.Records)
			return err
		},
	}

	cmd.Flags().IntVar(&retentionHours, "retention-hours", 0, "override MEDIA_RETENTION_HOURS")
	return cmd
}
