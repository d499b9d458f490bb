package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mx-space/folio/internal/config"
	"github.com/mx-space/folio/internal/pkg/logging"
)

var (
	configPath string
	appConfig  *config.AppConfig
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "folio",
	Short:         "Blog content and reading analytics backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		log, err := logging.New(logging.Options{Level: cfg.LogLevel, Dev: cfg.IsDev()})
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		appConfig, logger = cfg, log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "Path to YAML config file")
	rootCmd.AddCommand(serveCmd, postsCmd, replayCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
