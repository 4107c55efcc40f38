package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-crime-forecast/internal/models"
	"github.com/mr1hm/go-crime-forecast/internal/repository"
)

// Forecaster is the query side of forecast.Forecaster.
type Forecaster interface {
	RunQuery(ctx context.Context, beat int) ([]byte, error)
	Forecast(ctx context.Context, beat int) (models.Forecast, error)
}

type Handler struct {
	forecaster Forecaster
}

func NewHandler(forecaster Forecaster) *Handler {
	return &Handler{
		forecaster: forecaster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/beat/:beat_id", h.getBeat)
	r.GET("/beat/:beat_id/geojson", h.getBeatGeoJSON)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (h *Handler) getBeat(c *gin.Context) {
	beat, ok := beatParam(c)
	if !ok {
		return
	}

	data, err := h.forecaster.RunQuery(c.Request.Context(), beat)
	if err != nil {
		writeForecastError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}

// getBeatGeoJSON renders a single hour (?hour=0..23, default 0) as points
// for map clients.
func (h *Handler) getBeatGeoJSON(c *gin.Context) {
	beat, ok := beatParam(c)
	if !ok {
		return
	}

	hour := 0
	if hs := c.Query("hour"); hs != "" {
		v, err := strconv.Atoi(hs)
		if err != nil || v < 0 || v >= models.HoursPerDay {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hour must be an integer between 0 and 23"})
			return
		}
		hour = v
	}

	forecast, err := h.forecaster.Forecast(c.Request.Context(), beat)
	if err != nil {
		writeForecastError(c, err)
		return
	}

	fc := toGeoJSON(hour, forecast[hour])
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func beatParam(c *gin.Context) (int, bool) {
	beat, err := strconv.Atoi(c.Param("beat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "beat_id must be an integer"})
		return 0, false
	}
	return beat, true
}

func writeForecastError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrStoreUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "crime store unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute forecast"})
}
