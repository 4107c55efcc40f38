package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/mr1hm/go-crime-forecast/internal/models"
	"github.com/mr1hm/go-crime-forecast/internal/observability"
)

type Fetcher interface {
	FetchAll(ctx context.Context) ([]models.ServiceRequest, error)
}

// SnapshotSource serves service requests from a JSON snapshot file,
// fetching and storing a fresh one when the file is missing or older than
// maxAge. Concurrent callers share a single fetch.
type SnapshotSource struct {
	fetcher Fetcher
	path    string
	maxAge  time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	group   singleflight.Group
}

type SnapshotOption func(*SnapshotSource)

// WithClock replaces the clock used to judge snapshot age.
func WithClock(c clockwork.Clock) SnapshotOption {
	return func(s *SnapshotSource) { s.clock = c }
}

// NewSnapshotSource creates a source backed by the file at path.
// A zero maxAge keeps the snapshot forever.
func NewSnapshotSource(fetcher Fetcher, path string, maxAge time.Duration, metrics *observability.Metrics, opts ...SnapshotOption) *SnapshotSource {
	s := &SnapshotSource{
		fetcher: fetcher,
		path:    path,
		maxAge:  maxAge,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Requests returns the current open requests. The shared fetch is detached
// from the caller's cancellation so one caller going away does not fail the
// others; each caller still stops waiting when its own ctx is done.
func (s *SnapshotSource) Requests(ctx context.Context) ([]models.ServiceRequest, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(s.path, func() (any, error) {
		return s.load(shared)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.ServiceRequest), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *SnapshotSource) load(ctx context.Context) ([]models.ServiceRequest, error) {
	cached, fresh, err := s.read()
	if err != nil {
		slog.Warn("ignoring unreadable open311 snapshot", "path", s.path, "error", err)
	}
	if fresh {
		s.metrics.SnapshotReads.WithLabelValues("hit").Inc()
		return cached, nil
	}

	if cached != nil {
		s.metrics.SnapshotReads.WithLabelValues("expired").Inc()
	} else {
		s.metrics.SnapshotReads.WithLabelValues("miss").Inc()
	}

	requests, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		if cached != nil {
			slog.Warn("open311 refresh failed, serving stale snapshot", "path", s.path, "error", err)
			return cached, nil
		}
		return nil, err
	}

	if err := s.write(requests); err != nil {
		slog.Warn("failed to store open311 snapshot", "path", s.path, "error", err)
	}
	return requests, nil
}

// read returns the snapshot contents and whether they are still fresh.
// A missing file is not an error.
func (s *SnapshotSource) read() ([]models.ServiceRequest, bool, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false, err
	}

	requests := []models.ServiceRequest{}
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, false, fmt.Errorf("decoding snapshot: %w", err)
	}

	fresh := s.maxAge == 0 || s.clock.Since(info.ModTime()) <= s.maxAge
	return requests, fresh, nil
}

// write replaces the snapshot atomically.
func (s *SnapshotSource) write(requests []models.ServiceRequest) error {
	if requests == nil {
		requests = []models.ServiceRequest{}
	}
	data, err := json.Marshal(requests)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".open311-*.json")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
