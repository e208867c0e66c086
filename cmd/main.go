package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/bilanz/internal/adapters/feed"
	"github.com/okian/bilanz/internal/adapters/http/api"
	"github.com/okian/bilanz/internal/adapters/http/site"
	"github.com/okian/bilanz/internal/adapters/http/swagger"
	service "github.com/okian/bilanz/internal/app"
	"github.com/okian/bilanz/internal/config"
	"github.com/okian/bilanz/pkg/logger"
	"github.com/okian/bilanz/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (dotenv -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := initLogger(cfg); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "bilanz stopped with error", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// initLogger applies the logging section of cfg.
func initLogger(cfg *config.Config) error {
	opts := []logger.Option{logger.WithJSON(cfg.LogFormat == "json")}
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays))
	}
	if err := logger.Init(opts...); err != nil {
		return err
	}
	return logger.SetLevelString(cfg.LogLevel)
}

// run starts the service and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Warn(stopCtx, "service stop incomplete", logger.Error(err))
		}
	}()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	handler, err := newHandler(cfg, svc)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.Bool("index_enabled", cfg.IndexEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
	return nil
}

// newService builds the analysis service from cfg.
func newService(cfg *config.Config) (*service.Service, error) {
	opts := []service.Option{
		service.WithTitle(cfg.DocumentTitle),
		service.WithChartTheme(cfg.ChartTheme),
		service.WithIndex(cfg.IndexEnabled),
		service.WithIndexSymbols(cfg.IndexSymbols...),
		service.WithIndexRefresh(time.Duration(cfg.IndexRefreshMS) * time.Millisecond),
		service.WithHistorySize(cfg.IndexHistorySize),
		service.WithQueueSize(cfg.IndexQueueSize),
	}
	if cfg.IndexSource == config.SourceHTTP {
		fetcher, err := feed.NewHTTPFetcher(cfg.IndexQuoteURL, cfg.IndexPricePath, time.Duration(cfg.IndexTimeoutMS)*time.Millisecond)
		if err != nil {
			return nil, fmt.Errorf("index fetcher: %w", err)
		}
		opts = append(opts, service.WithFetcher(fetcher))
	}
	return service.New(opts...), nil
}

// newHandler wires the API, the docs and the site onto one router.
func newHandler(cfg *config.Config, svc *service.Service) (http.Handler, error) {
	router := mux.NewRouter()

	apiServer := api.NewServer(svc,
		api.WithCSVFileName(cfg.CSVFileName),
		api.WithPDFFileName(cfg.PDFFileName),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	apiServer.Register(router)

	swagger.Register(router)

	pages, err := site.New(svc,
		site.WithChartTheme(cfg.ChartTheme),
		site.WithRefresh(time.Duration(cfg.IndexRefreshMS)*time.Millisecond),
		site.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("build site: %w", err)
	}
	pages.Register(router)

	return api.Harden(router, cfg.CORSOrigins...), nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
