package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mr1hm/go-crime-forecast/internal/models"
)

// ErrStoreUnavailable is returned when the crime store cannot be reached.
var ErrStoreUnavailable = errors.New("crime store unavailable")

// MalformedRecordError describes a row that could not be mapped onto
// models.CrimeEvent. Such rows are skipped.
type MalformedRecordError struct {
	Row int // 1-based position in the result set
	Err error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed crime record at row %d: %v", e.Row, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

type CrimeRepository interface {
	CrimesByBeat(ctx context.Context, beat int) ([]models.CrimeEvent, error)
	InsertCrimes(ctx context.Context, crimes []models.CrimeEvent) (int64, error)
	Close() error
}
