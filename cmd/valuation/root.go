package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mna_valuation/pkg/config"
)

var (
	cfg   *config.Config
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "valuation",
	Short: "Corporate valuation computation suite",
	Long:  "Runs DCF, comparable-company, LBO, merger, and growth-scenario valuations over a case file and emits the results as JSON.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Environment variables may come from a local .env in development.
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if debug {
			cfg.Log.Level = "debug"
			cfg.Log.Format = "console"
		}
		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "console logging at debug level")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
