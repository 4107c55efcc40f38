package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mr1hm/go-crime-forecast/internal/models"
	"github.com/mr1hm/go-crime-forecast/internal/repository"
)

// mockForecaster implements Forecaster for testing
type mockForecaster struct {
	forecast models.Forecast
	err      error
	beats    []int
}

func (m *mockForecaster) Forecast(ctx context.Context, beat int) (models.Forecast, error) {
	m.beats = append(m.beats, beat)
	if m.err != nil {
		return nil, m.err
	}
	return m.forecast, nil
}

func (m *mockForecaster) RunQuery(ctx context.Context, beat int) ([]byte, error) {
	f, err := m.Forecast(ctx, beat)
	if err != nil {
		return nil, err
	}
	return json.Marshal(f)
}

func testForecast() models.Forecast {
	f := models.NewForecast()
	f[1] = []models.ProbabilityResult{
		{Probability: 0.0005, Latitude: 41.931, Longitude: -87.805},
		{Probability: 0.0002, Latitude: 41.936, Longitude: -87.794},
	}
	return f
}

func setupTestRouter(f Forecaster) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(f)
	handler.RegisterRoutes(router)
	return router
}

func TestGetBeat_ReturnsForecast(t *testing.T) {
	mock := &mockForecaster{forecast: testForecast()}
	router := setupTestRouter(mock)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/beat/2523", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected content-type application/json, got %s", contentType)
	}

	var body map[string][]models.ProbabilityResult
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if len(body) != models.HoursPerDay {
		t.Errorf("expected %d hours, got %d", models.HoursPerDay, len(body))
	}
	if len(body["1"]) != 2 {
		t.Errorf("expected 2 results at hour 1, got %d", len(body["1"]))
	}
	if len(mock.beats) != 1 || mock.beats[0] != 2523 {
		t.Errorf("expected beat 2523 to be queried, got %v", mock.beats)
	}
}

func TestGetBeat_InvalidBeat(t *testing.T) {
	mock := &mockForecaster{forecast: testForecast()}
	router := setupTestRouter(mock)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/beat/north-side", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if len(mock.beats) != 0 {
		t.Error("forecaster should not be called for an invalid beat")
	}
}

func TestGetBeat_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"store unavailable", fmt.Errorf("loading: %w", repository.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"parse error", &models.ParseError{CrimeID: 1, Value: "bad"}, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(&mockForecaster{err: tt.err})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/beat/2523", nil)
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestGetBeatGeoJSON(t *testing.T) {
	router := setupTestRouter(&mockForecaster{forecast: testForecast()})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/beat/2523/geojson?hour=1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", ct)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("expected type FeatureCollection, got %s", fc.Type)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}

	first := fc.Features[0]
	if first.Geometry.Coordinates[0] != -87.805 || first.Geometry.Coordinates[1] != 41.931 {
		t.Errorf("expected [lon, lat] coordinates, got %v", first.Geometry.Coordinates)
	}
	if first.Properties["rank"] != float64(1) {
		t.Errorf("expected rank 1, got %v", first.Properties["rank"])
	}
}

func TestGetBeatGeoJSON_InvalidHour(t *testing.T) {
	router := setupTestRouter(&mockForecaster{forecast: testForecast()})

	for _, hour := range []string{"24", "-1", "noon"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/beat/2523/geojson?hour="+hour, nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("hour=%s: expected status 400, got %d", hour, w.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(&mockForecaster{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(&mockForecaster{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}
