package models

import (
	"fmt"
	"time"
)

// DateLayout is the timestamp format of the city crime export,
// e.g. "06/13/2013 11:45:00 PM".
const DateLayout = "01/02/2006 03:04:05 PM"

type CrimeEvent struct {
	CrimeID   int64
	CaseID    string
	Date      string // raw timestamp as stored, see DateLayout
	Block     string // e.g. "071XX W DIVERSEY AVE"
	CrimeType string // BATTERY, BURGLARY, HOMICIDE...
	Beat      int
	District  int
	Year      int
	Latitude  float64
	Longitude float64
}

// ParseError reports a crime timestamp that does not match DateLayout.
type ParseError struct {
	CrimeID int64
	Value   string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("crime %d: unparsable date %q: %v", e.CrimeID, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Hour returns the hour of day (0-23) the crime occurred.
func (c CrimeEvent) Hour() (int, error) {
	t, err := time.Parse(DateLayout, c.Date)
	if err != nil {
		return 0, &ParseError{CrimeID: c.CrimeID, Value: c.Date, Err: err}
	}
	return t.Hour(), nil
}

func (c CrimeEvent) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
	}
}
