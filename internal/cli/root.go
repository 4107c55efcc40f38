// Package cli implements the crimectl commands: bulk loading the crimes
// table and running one-off beat forecasts without the HTTP server.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-crime-forecast/internal/config"
	"github.com/mr1hm/go-crime-forecast/internal/logging"
	"github.com/mr1hm/go-crime-forecast/internal/observability"
	"github.com/mr1hm/go-crime-forecast/internal/repository"
)

var (
	dbPath   string
	dbURL    string
	logLevel string

	cfg     *config.Config
	metrics *observability.Metrics
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "crimectl",
	Short: "Manage the crime store and run beat forecasts",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			exitErr("load config", err)
		}
		if dbPath != "" {
			cfg.DB.Path = dbPath
			cfg.DB.URL = ""
		}
		if dbURL != "" {
			cfg.DB.URL = dbURL
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
		metrics = observability.NewMetrics()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (default: $DB_PATH)")
	RootCmd.PersistentFlags().StringVar(&dbURL, "database-url", "", "Postgres connection URL (default: $DATABASE_URL)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default: $LOG_LEVEL)")
}

func openStore() (*repository.SQLStore, error) {
	return repository.Open(cfg.DB)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
