package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const driverSQLite = "sqlite"

// NewSQLiteDB opens (creating if needed) the SQLite crime store at path.
// ":memory:" is accepted for tests.
func NewSQLiteDB(path string) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("error creating db dir: %w", err)
		}
	}

	db, err := sql.Open(driverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("%w: error opening database: %v", ErrStoreUnavailable, err)
	}
	// A single connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	return newSQLStore(db, driverSQLite)
}
