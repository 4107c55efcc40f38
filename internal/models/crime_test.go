package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrimeEvent_Hour(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"06/13/2013 12:05:00 AM", 0},
		{"06/13/2013 01:30:00 AM", 1},
		{"06/13/2013 12:00:00 PM", 12},
		{"06/13/2013 11:59:59 PM", 23},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := CrimeEvent{Date: tt.date}.Hour()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCrimeEvent_HourParseError(t *testing.T) {
	_, err := CrimeEvent{CrimeID: 42, Date: "2013-06-13T23:45:00Z"}.Hour()
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, int64(42), perr.CrimeID)
	assert.Equal(t, "2013-06-13T23:45:00Z", perr.Value)
}

func TestNewForecast_AllHoursPresent(t *testing.T) {
	f := NewForecast()
	assert.Len(t, f, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		assert.NotNil(t, f[h], "hour %d", h)
	}
}
