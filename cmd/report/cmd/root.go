package cmd

import (
	"context"
	"os"

	"deep-research/config"
	"deep-research/internal/app"
	"deep-research/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	Version    = "dev"
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "report",
	Short:         "Generate long-form research reports from documents",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetOutput(cmd.ErrOrStderr())
		if logLevel != "" {
			return logger.SetLevel(logLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $APP_CONFIG_FILE or config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log_level (debug, info, warn, error)")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err, "command failed")
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Cfg, nil
	}
	return config.Load(configPath)
}

func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
