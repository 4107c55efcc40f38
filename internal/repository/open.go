package repository

import (
	"log/slog"

	"github.com/mr1hm/go-crime-forecast/internal/config"
)

// Open returns the store selected by cfg: Postgres when a URL is configured,
// SQLite otherwise.
func Open(cfg config.DatabaseConfig) (*SQLStore, error) {
	var (
		s   *SQLStore
		err error
	)
	if cfg.URL != "" {
		slog.Info("using postgres crime store")
		s, err = NewPostgresDB(cfg.URL)
	} else {
		slog.Info("using sqlite crime store", "path", cfg.Path)
		s, err = NewSQLiteDB(cfg.Path)
	}
	if err != nil {
		return nil, err
	}

	s.SetYearFilter(cfg.YearFilter)
	return s, nil
}
