// Package importer loads the city crime CSV export into the crime store.
//
// The export has one row per crime with (at least) 21 columns. Only ten are
// kept:
//
//	0 ID  1 Case Number  2 Date  3 Block  5 Primary Type  10 Beat
//	11 District  17 Year  19 Latitude  20 Longitude
//
// Rows with a missing or non-numeric value in any numeric column, and rows
// older than MinYear, are skipped. Rows already in the store are ignored.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/mr1hm/go-crime-forecast/internal/models"
	"github.com/mr1hm/go-crime-forecast/internal/observability"
	"github.com/mr1hm/go-crime-forecast/internal/worker"
)

const (
	colID          = 0
	colCaseNumber  = 1
	colDate        = 2
	colBlock       = 3
	colPrimaryType = 5
	colBeat        = 10
	colDistrict    = 11
	colYear        = 17
	colLatitude    = 19
	colLongitude   = 20

	minColumns = colLongitude + 1
)

var ErrTooOld = errors.New("crime predates the import window")

type Inserter interface {
	InsertCrimes(ctx context.Context, crimes []models.CrimeEvent) (int64, error)
}

type Options struct {
	MinYear   int
	Workers   int
	BatchSize int
}

func DefaultOptions() Options {
	return Options{
		MinYear:   2008,
		Workers:   2,
		BatchSize: 500,
	}
}

type Result struct {
	Rows       int64 // data rows read, header excluded
	Inserted   int64
	Duplicates int64
	Skipped    int64
}

type Importer struct {
	store   Inserter
	opts    Options
	metrics *observability.Metrics
}

func New(store Inserter, opts Options, metrics *observability.Metrics) *Importer {
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	return &Importer{
		store:   store,
		opts:    opts,
		metrics: metrics,
	}
}

// Import reads the CSV from r and inserts it in batches on a worker pool.
// The first failed insert is returned once all batches have been attempted.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	var (
		res        Result
		inserted   atomic.Int64
		duplicates atomic.Int64
	)

	pool := worker.NewWorkerPool(im.opts.Workers, im.opts.Workers, func(ctx context.Context, batch []models.CrimeEvent) error {
		n, err := im.store.InsertCrimes(ctx, batch)
		if err != nil {
			slog.Error("batch insert failed", "size", len(batch), "first_id", batch[0].CrimeID, "error", err)
			return err
		}
		inserted.Add(n)
		duplicates.Add(int64(len(batch)) - n)
		im.metrics.ImportedRows.Add(float64(n))
		return nil
	})
	pool.Start(ctx)

	readErr := im.read(ctx, r, &res, func(batch []models.CrimeEvent) error {
		return pool.Submit(ctx, batch)
	})
	insertErr := pool.Stop()

	res.Inserted = inserted.Load()
	res.Duplicates = duplicates.Load()

	if readErr != nil {
		return res, readErr
	}
	if insertErr != nil {
		return res, fmt.Errorf("%d batches failed: %w", pool.Failed(), insertErr)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (im *Importer) read(ctx context.Context, r io.Reader, res *Result, submit func([]models.CrimeEvent) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("error reading csv header: %w", err)
	}

	batch := make([]models.CrimeEvent, 0, im.opts.BatchSize)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Rows++
				im.skip(res, err)
				continue
			}
			return fmt.Errorf("error reading csv: %w", err)
		}
		res.Rows++

		crime, err := ParseRow(record, im.opts.MinYear)
		if err != nil {
			im.skip(res, err)
			continue
		}

		batch = append(batch, crime)
		if len(batch) == im.opts.BatchSize {
			if err := submit(batch); err != nil {
				return err
			}
			batch = make([]models.CrimeEvent, 0, im.opts.BatchSize)
		}
	}

	if len(batch) > 0 {
		if err := submit(batch); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (im *Importer) skip(res *Result, err error) {
	res.Skipped++
	im.metrics.SkippedRows.Inc()
	if !errors.Is(err, ErrTooOld) {
		slog.Debug("skipping csv row", "row", res.Rows, "error", err)
	}
}

// ParseRow maps one raw export row onto a CrimeEvent.
func ParseRow(record []string, minYear int) (models.CrimeEvent, error) {
	if len(record) < minColumns {
		return models.CrimeEvent{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(record))
	}

	id, err := parseInt(record, colID)
	if err != nil {
		return models.CrimeEvent{}, err
	}
	year, err := parseInt(record, colYear)
	if err != nil {
		return models.CrimeEvent{}, err
	}
	if int(year) < minYear {
		return models.CrimeEvent{}, fmt.Errorf("crime %d from %d: %w", id, year, ErrTooOld)
	}
	beat, err := parseInt(record, colBeat)
	if err != nil {
		return models.CrimeEvent{}, err
	}
	district, err := parseInt(record, colDistrict)
	if err != nil {
		return models.CrimeEvent{}, err
	}
	lat, err := parseFloat(record, colLatitude)
	if err != nil {
		return models.CrimeEvent{}, err
	}
	long, err := parseFloat(record, colLongitude)
	if err != nil {
		return models.CrimeEvent{}, err
	}

	return models.CrimeEvent{
		CrimeID:   id,
		CaseID:    record[colCaseNumber],
		Date:      record[colDate],
		Block:     record[colBlock],
		CrimeType: record[colPrimaryType],
		Beat:      int(beat),
		District:  int(district),
		Year:      int(year),
		Latitude:  lat,
		Longitude: long,
	}, nil
}

func parseInt(record []string, col int) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(record[col]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %d: %w", col, err)
	}
	return v, nil
}

func parseFloat(record []string, col int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("column %d: %w", col, err)
	}
	return v, nil
}
