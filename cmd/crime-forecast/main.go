package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-crime-forecast/internal/api"
	"github.com/mr1hm/go-crime-forecast/internal/config"
	"github.com/mr1hm/go-crime-forecast/internal/forecast"
	"github.com/mr1hm/go-crime-forecast/internal/ingestion"
	"github.com/mr1hm/go-crime-forecast/internal/logging"
	"github.com/mr1hm/go-crime-forecast/internal/observability"
	"github.com/mr1hm/go-crime-forecast/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	store, err := repository.Open(cfg.DB)
	if err != nil {
		logging.Fatalf("Failed to initialize crime store: %v", err)
	}
	defer store.Close()

	metrics := observability.NewMetrics()

	opts := []forecast.Option{forecast.WithWindow(cfg.Forecast.Window)}
	if cfg.Open311.Enabled {
		feed := ingestion.NewFeed(cfg.Open311, metrics)
		snapshot := ingestion.NewSnapshotSource(feed, cfg.Open311.SnapshotPath, cfg.Open311.SnapshotMaxAge, metrics)
		opts = append(opts, forecast.WithRequests(snapshot))
		slog.Info("311 enrichment enabled", "snapshot", cfg.Open311.SnapshotPath)
	} else {
		slog.Warn("311 enrichment disabled, every block gets the no-request multiplier")
	}
	forecaster := forecast.New(store, metrics, opts...)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", api.RequestIDHeader},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(forecaster)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
