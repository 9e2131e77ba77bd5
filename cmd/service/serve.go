package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httphandler "github.com/kjstillabower/weather-explorer/internal/http"
	"github.com/kjstillabower/weather-explorer/internal/lifecycle"
	"github.com/kjstillabower/weather-explorer/internal/observability"
	"github.com/kjstillabower/weather-explorer/internal/traffic"
	"github.com/kjstillabower/weather-explorer/internal/views"
)

const inFlightCheckInterval = 100 * time.Millisecond

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

// serve runs until ctx is cancelled, then drains. Telemetry is flushed on every exit path.
func (a *app) serve(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	shutdownTracing, err := observability.InitTracing(ctx, cfg.ServiceName, cfg.OTelCollectorURL)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		logger.Info("flushing telemetry")
		if err := observability.FlushTelemetry(context.Background(), logger, shutdownTracing); err != nil {
			fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
		}
	}()
	if cfg.OTelCollectorURL != "" {
		logger.Info("tracing enabled", zap.String("collector", cfg.OTelCollectorURL))
	}

	if err := views.Load(); err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	state := lifecycle.New()
	inflight := &httphandler.InFlightTracker{}
	health := httphandler.HealthConfig{Window: cfg.HealthWindow, ErrorPct: cfg.HealthErrorPct}
	if a.breaker != nil {
		health.BreakerState = a.breaker.State
	}
	handler := httphandler.NewHandler(a.weather, &traffic.Tracker{}, state, health, logger)
	router := httphandler.NewRouter(handler, logger, inflight, cfg.RequestTimeout)
	if cfg.TestingMode {
		logger.Warn("Testing mode enabled; /test endpoint exposed")
		httphandler.MountTestRoutes(router, handler)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("graceful shutdown triggered")
	state.BeginShutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", inflight.Count()))
	if err := inflight.WaitForZero(shutdownCtx, inFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", inflight.Count()))
	}

	logger.Info("shutdown complete")
	return nil
}
