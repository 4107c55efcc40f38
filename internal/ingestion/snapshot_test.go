package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-crime-forecast/internal/models"
	"github.com/mr1hm/go-crime-forecast/internal/observability"
)

type countingFetcher struct {
	calls    atomic.Int64
	requests []models.ServiceRequest
	err      error
	delay    time.Duration
}

func (f *countingFetcher) FetchAll(context.Context) ([]models.ServiceRequest, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.requests, f.err
}

func testRequests() []models.ServiceRequest {
	return []models.ServiceRequest{
		{ServiceRequestID: "13-0001", Address: "7120 W DIVERSEY AVE, CHICAGO, IL, 60707", Latitude: 41.93, Longitude: -87.80},
		{ServiceRequestID: "13-0002", Address: "3000 N OAK PARK AVE, CHICAGO, IL, 60634", Latitude: 41.93, Longitude: -87.79},
	}
}

func TestSnapshotSource_FetchThenServeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "311requests.json")
	fetcher := &countingFetcher{requests: testRequests()}
	src := NewSnapshotSource(fetcher, path, 0, observability.NewMetricsForTesting())

	first, err := src.Requests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testRequests(), first)
	assert.FileExists(t, path)

	second, err := src.Requests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), fetcher.calls.Load())

	// A new source over the same file does not hit the feed either.
	other := NewSnapshotSource(fetcher, path, 0, observability.NewMetricsForTesting())
	third, err := other.Requests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Equal(t, int64(1), fetcher.calls.Load())
}

func TestSnapshotSource_FeedUnavailableWithoutSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "311requests.json")
	fetcher := &countingFetcher{err: ErrFeedUnavailable}
	src := NewSnapshotSource(fetcher, path, 0, observability.NewMetricsForTesting())

	_, err := src.Requests(context.Background())
	assert.True(t, errors.Is(err, ErrFeedUnavailable))
	assert.NoFileExists(t, path)
}

func TestSnapshotSource_ExpiredSnapshotRefreshed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "311requests.json")
	clock := clockwork.NewFakeClockAt(time.Now())
	fetcher := &countingFetcher{requests: testRequests()}
	src := NewSnapshotSource(fetcher, path, time.Hour, observability.NewMetricsForTesting(), WithClock(clock))

	_, err := src.Requests(context.Background())
	require.NoError(t, err)
	_, err = src.Requests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), fetcher.calls.Load(), "fresh snapshot is reused")

	clock.Advance(2 * time.Hour)
	_, err = src.Requests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), fetcher.calls.Load(), "expired snapshot triggers a fetch")
}

func TestSnapshotSource_StaleSnapshotWhenFeedDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "311requests.json")
	clock := clockwork.NewFakeClockAt(time.Now())
	fetcher := &countingFetcher{requests: testRequests()}
	src := NewSnapshotSource(fetcher, path, time.Hour, observability.NewMetricsForTesting(), WithClock(clock))

	_, err := src.Requests(context.Background())
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	fetcher.err = ErrFeedUnavailable
	fetcher.requests = nil

	got, err := src.Requests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testRequests(), got)
}

func TestSnapshotSource_CorruptSnapshotRefetched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "311requests.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	fetcher := &countingFetcher{requests: testRequests()}
	src := NewSnapshotSource(fetcher, path, 0, observability.NewMetricsForTesting())

	got, err := src.Requests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testRequests(), got)
	assert.Equal(t, int64(1), fetcher.calls.Load())
}

func TestSnapshotSource_ConcurrentCallersShareFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "311requests.json")
	fetcher := &countingFetcher{requests: testRequests(), delay: 100 * time.Millisecond}
	src := NewSnapshotSource(fetcher, path, 0, observability.NewMetricsForTesting())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := src.Requests(context.Background())
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), fetcher.calls.Load())
}

// gatedFetcher blocks until release is closed or its ctx is done.
type gatedFetcher struct {
	started     chan struct{}
	release     chan struct{}
	startedOnce sync.Once
}

func (f *gatedFetcher) FetchAll(ctx context.Context) ([]models.ServiceRequest, error) {
	f.startedOnce.Do(func() { close(f.started) })
	select {
	case <-f.release:
		return testRequests(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestSnapshotSource_CancelledCallerDoesNotFailOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "311requests.json")
	fetcher := &gatedFetcher{started: make(chan struct{}), release: make(chan struct{})}
	src := NewSnapshotSource(fetcher, path, 0, observability.NewMetricsForTesting())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := src.Requests(ctxA)
		errA <- err
	}()
	<-fetcher.started

	type result struct {
		requests []models.ServiceRequest
		err      error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := src.Requests(context.Background())
		resB <- result{got, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(fetcher.release)
	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Equal(t, testRequests(), res.requests)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
	assert.FileExists(t, path)
}
