package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"image-catalog/internal/catalog"
	"image-catalog/internal/config"
	"image-catalog/internal/events"
	"image-catalog/internal/handlers"
	"image-catalog/internal/health"
	"image-catalog/internal/logging"
	"image-catalog/internal/middleware"
	"image-catalog/internal/reconciler"
	"image-catalog/internal/startup"
)

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	startup.LogBanner(cfg)

	state := health.NewServiceState(startup.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := catalog.New(ctx, cfg.DatabasePath, state)
	if err != nil {
		startup.LogFatal("Failed to open catalog database: %v", err)
	}
	defer db.Close()

	bus := events.NewBus()
	cache := reconciler.NewCache(db, state)
	rec := reconciler.New(db, bus)
	sched := reconciler.NewScheduler(cache, rec, bus, state, cfg.ScanIntervalDuration())

	if err := reconciler.RegisterHandlers(bus, db, cache); err != nil {
		startup.LogFatal("Failed to register event handlers: %v", err)
	}

	// Prime the base path cache on the first cycle.
	sched.RequestRefresh()
	go sched.Run(ctx)

	h := handlers.New(db, state, sched, startup.Version)

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	handler := middleware.Logger(middleware.LoggingConfig{LogHealthChecks: cfg.LogHealthChecks})(router)
	if cfg.MetricsEnabled {
		handler = middleware.Metrics()(handler)
		go serveMetrics(cfg.MetricsPort)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, cancel, bus)

	startup.LogServerStarted(cfg.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

// serveMetrics exposes the Prometheus registry on its own port so the
// scrape endpoint never shares the API listener.
func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logging.Info("Metrics server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, cancel context.CancelFunc, bus *events.Bus) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	startup.LogShutdownStep("Stopping scheduler")
	cancel()

	startup.LogShutdownStep("Discarding queued events")
	bus.Clear()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}

	startup.LogShutdownComplete()
}
