package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mr1hm/go-crime-forecast/internal/models"
)

const crimeColumns = `crime_id, case_id, date, block, crime_type, beat, district, year, lat, "long"`

// SQLStore implements CrimeRepository on top of database/sql. The SQLite and
// Postgres adapters differ only in driver and placeholder style.
type SQLStore struct {
	db         *sql.DB
	driver     string
	yearFilter int
}

func newSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: error while pinging database: %v", ErrStoreUnavailable, err)
	}

	s := &SQLStore{
		db:     db,
		driver: driver,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS crimes (
			crime_id BIGINT PRIMARY KEY,
			case_id VARCHAR(255),
			date VARCHAR(255),
			block VARCHAR(255),
			crime_type VARCHAR(255),
			beat INTEGER,
			district INTEGER,
			year INTEGER,
			lat DOUBLE PRECISION,
			"long" DOUBLE PRECISION
		);

		CREATE INDEX IF NOT EXISTS idx_crimes_beat ON crimes(beat);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SetYearFilter restricts CrimesByBeat to a single year. Zero disables it.
func (s *SQLStore) SetYearFilter(year int) {
	s.yearFilter = year
}

func (s *SQLStore) CrimesByBeat(ctx context.Context, beat int) ([]models.CrimeEvent, error) {
	query := "SELECT " + crimeColumns + " FROM crimes WHERE beat = ?"
	args := []any{beat}
	if s.yearFilter != 0 {
		query += " AND year = ?"
		args = append(args, s.yearFilter)
	}
	query += " ORDER BY crime_id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying beat %d: %v", ErrStoreUnavailable, beat, err)
	}
	defer rows.Close()

	var (
		crimes  []models.CrimeEvent
		skipped int
		rowNum  int
	)
	for rows.Next() {
		rowNum++
		c, err := scanCrime(rows)
		if err != nil {
			merr := &MalformedRecordError{Row: rowNum, Err: err}
			slog.Warn("skipping crime record", "beat", beat, "error", merr)
			skipped++
			continue
		}
		crimes = append(crimes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading beat %d: %v", ErrStoreUnavailable, beat, err)
	}

	slog.Debug("loaded crimes", "beat", beat, "count", len(crimes), "skipped", skipped)
	return crimes, nil
}

func scanCrime(rows *sql.Rows) (models.CrimeEvent, error) {
	var (
		id                             sql.NullInt64
		caseID, date, block, crimeType sql.NullString
		beat, district, year           sql.NullInt64
		lat, long                      sql.NullFloat64
	)
	if err := rows.Scan(&id, &caseID, &date, &block, &crimeType, &beat, &district, &year, &lat, &long); err != nil {
		return models.CrimeEvent{}, err
	}

	switch {
	case !id.Valid:
		return models.CrimeEvent{}, errors.New("missing crime_id")
	case !date.Valid:
		return models.CrimeEvent{}, fmt.Errorf("crime %d: missing date", id.Int64)
	case !block.Valid:
		return models.CrimeEvent{}, fmt.Errorf("crime %d: missing block", id.Int64)
	}

	return models.CrimeEvent{
		CrimeID:   id.Int64,
		CaseID:    caseID.String,
		Date:      date.String,
		Block:     block.String,
		CrimeType: crimeType.String,
		Beat:      int(beat.Int64),
		District:  int(district.Int64),
		Year:      int(year.Int64),
		Latitude:  lat.Float64,
		Longitude: long.Float64,
	}, nil
}

// InsertCrimes writes crimes in one transaction. Rows whose crime_id already
// exists are left untouched; the returned count excludes them.
func (s *SQLStore) InsertCrimes(ctx context.Context, crimes []models.CrimeEvent) (int64, error) {
	if len(crimes) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin tx: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		"INSERT INTO crimes ("+crimeColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (crime_id) DO NOTHING",
	))
	if err != nil {
		return 0, fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, c := range crimes {
		res, err := stmt.ExecContext(ctx,
			c.CrimeID, c.CaseID, c.Date, c.Block, c.CrimeType,
			c.Beat, c.District, c.Year, c.Latitude, c.Longitude,
		)
		if err != nil {
			return 0, fmt.Errorf("error inserting crime %d: %w", c.CrimeID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("error reading rows affected: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing crimes: %w", err)
	}
	return inserted, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders into $N for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != driverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
