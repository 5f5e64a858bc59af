package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ocrweb/internal/config"
	"ocrweb/internal/logging"
)

// appEnv is built once before any subcommand runs.
type appEnv struct {
	cfg    *config.AppConfig
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	env := &appEnv{}
	var configPath string

	cmd := &cobra.Command{
		Use:           "ocrweb",
		Short:         "Upload document images and view their OCR output",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			env.cfg = cfg
			env.logger = logging.New(os.Stderr, cfg.LogLevel, logging.Location(cfg.Timezone)).
				With("service", "ocrweb", "version", version)
			slog.SetDefault(env.logger)
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("OCRWEB_CONFIG"), "path to a TOML or YAML config file")

	cmd.AddCommand(
		newServeCmd(env),
		newSweepCmd(env),
		newRecognizeCmd(env),
	)
	return cmd
}
