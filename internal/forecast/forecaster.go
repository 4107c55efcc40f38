package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mr1hm/go-crime-forecast/internal/models"
	"github.com/mr1hm/go-crime-forecast/internal/observability"
)

type CrimeLoader interface {
	CrimesByBeat(ctx context.Context, beat int) ([]models.CrimeEvent, error)
}

type RequestSource interface {
	Requests(ctx context.Context) ([]models.ServiceRequest, error)
}

// Forecaster runs the beat forecast pipeline. Each query builds its own
// locations, so a Forecaster may serve concurrent queries.
type Forecaster struct {
	loader   CrimeLoader
	requests RequestSource
	cache    ResultCache
	window   int
	metrics  *observability.Metrics
}

type Option func(*Forecaster)

// WithRequests enables 311 enrichment. Without it every block gets the
// zero-request multiplier.
func WithRequests(src RequestSource) Option {
	return func(f *Forecaster) { f.requests = src }
}

func WithWindow(months int) Option {
	return func(f *Forecaster) { f.window = months }
}

func WithCache(c ResultCache) Option {
	return func(f *Forecaster) { f.cache = c }
}

func New(loader CrimeLoader, metrics *observability.Metrics, opts ...Option) *Forecaster {
	f := &Forecaster{
		loader:  loader,
		cache:   NopCache{},
		window:  DefaultWindow,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RunQuery returns the JSON forecast for beat: an object keyed by hour
// "0".."23", each holding results sorted by descending probability.
func (f *Forecaster) RunQuery(ctx context.Context, beat int) ([]byte, error) {
	if cached, ok := f.cache.Get(beat); ok {
		return cached, nil
	}

	forecast, err := f.Forecast(ctx, beat)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(forecast)
	if err != nil {
		return nil, fmt.Errorf("error encoding forecast for beat %d: %w", beat, err)
	}
	f.cache.Set(beat, data)
	return data, nil
}

// Forecast loads the crimes of beat and computes its hourly forecast.
// A store or date parse failure aborts the query; a 311 failure only
// disables enrichment.
func (f *Forecaster) Forecast(ctx context.Context, beat int) (models.Forecast, error) {
	start := time.Now()

	forecast, err := f.forecast(ctx, beat)
	if err != nil {
		f.metrics.Queries.WithLabelValues("error").Inc()
		slog.Error("forecast failed", "beat", beat, "error", err)
		return nil, err
	}

	f.metrics.Queries.WithLabelValues("success").Inc()
	f.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	return forecast, nil
}

func (f *Forecaster) forecast(ctx context.Context, beat int) (models.Forecast, error) {
	crimes, err := f.loader.CrimesByBeat(ctx, beat)
	if err != nil {
		return nil, fmt.Errorf("error loading crimes for beat %d: %w", beat, err)
	}
	f.metrics.CrimesLoaded.Observe(float64(len(crimes)))

	locations, counts, err := Aggregate(crimes)
	if err != nil {
		return nil, fmt.Errorf("error aggregating beat %d: %w", beat, err)
	}

	if f.requests != nil {
		requests, err := f.requests.Requests(ctx)
		if err != nil {
			slog.Warn("311 requests unavailable, skipping enrichment", "beat", beat, "error", err)
		} else {
			locations = Enrich(locations, requests)
		}
	}

	slog.Debug("computing forecast", "beat", beat, "crimes", len(crimes), "locations", len(locations))
	return Compute(counts, locations, f.window), nil
}
