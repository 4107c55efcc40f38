package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mr1hm/go-crime-forecast/internal/config"
	"github.com/mr1hm/go-crime-forecast/internal/models"
	"github.com/mr1hm/go-crime-forecast/internal/observability"
)

// PageSize is the number of requests asked for per Open311 page.
const PageSize = 500

// ErrFeedUnavailable is returned when any page of the Open311 feed cannot
// be fetched or decoded.
var ErrFeedUnavailable = errors.New("open311 feed unavailable")

// Feed pages through open service requests of an Open311 v2 endpoint.
type Feed struct {
	baseURL   string
	startDate string
	maxPages  int
	client    *http.Client
	metrics   *observability.Metrics
}

func NewFeed(cfg config.Open311Config, metrics *observability.Metrics) *Feed {
	return &Feed{
		baseURL:   cfg.URL,
		startDate: cfg.StartDate,
		maxPages:  cfg.MaxPages,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: metrics,
	}
}

// FetchAll requests pages 1, 2, ... until the feed returns an empty page.
// A failure on any page discards what was read so far.
func (f *Feed) FetchAll(ctx context.Context) ([]models.ServiceRequest, error) {
	var requests []models.ServiceRequest

	for page := 1; page <= f.maxPages; page++ {
		batch, err := f.fetchPage(ctx, page)
		if err != nil {
			f.metrics.FeedErrors.Inc()
			return nil, fmt.Errorf("%w: page %d: %v", ErrFeedUnavailable, page, err)
		}
		f.metrics.FeedPages.Inc()

		if len(batch) == 0 {
			slog.Info("open311 fetch complete", "pages", page-1, "requests", len(requests))
			return requests, nil
		}
		requests = append(requests, batch...)
		slog.Debug("open311 page fetched", "page", page, "count", len(batch))
	}

	slog.Warn("open311 page limit reached", "max_pages", f.maxPages, "requests", len(requests))
	return requests, nil
}

func (f *Feed) fetchPage(ctx context.Context, page int) ([]models.ServiceRequest, error) {
	pageURL, err := f.pageURL(page)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var batch []models.ServiceRequest
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return batch, nil
}

func (f *Feed) pageURL(page int) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid open311 url %q: %w", f.baseURL, err)
	}

	q := u.Query()
	q.Set("start_date", f.startDate)
	q.Set("status", "open")
	q.Set("page_size", strconv.Itoa(PageSize))
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
