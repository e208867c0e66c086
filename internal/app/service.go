// Package service provides the core business service that implements
// the dependencies required by the HTTP API, the dashboard and the CLI.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/bilanz/internal/adapters/feed"
	"github.com/okian/bilanz/internal/adapters/mq/queue"
	"github.com/okian/bilanz/internal/adapters/mq/worker"
	"github.com/okian/bilanz/internal/adapters/render/report"
	"github.com/okian/bilanz/internal/domain/quote"
	"github.com/okian/bilanz/internal/domain/ratios"
	"github.com/okian/bilanz/pkg/logger"
	"github.com/okian/bilanz/pkg/metrics"
)

const (
	defaultTitle      = "Bilanzanalyse"
	defaultChartTheme = "white"
	defaultRefresh    = 10 * time.Second
	defaultQueueSize  = 16
	shutdownTimeout   = 5 * time.Second
)

// ErrNotStarted is returned by Stop when Start was never called.
var ErrNotStarted = errors.New("service not started")

// Service implements the analysis pipeline and owns the live index panel.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine    ratios.Calculator
	assembler *report.Assembler

	// Presentation configuration
	title      string
	chartTheme string

	// Live index configuration
	indexEnabled bool
	symbols      []string
	refresh      time.Duration
	historySize  int
	queueSize    int
	fetcher      feed.Fetcher

	// Live index state
	history  quote.History
	queue    *queue.InMemoryQueue
	recorder *worker.Recorder
	poller   *feed.Poller
	cancel   context.CancelFunc
	started  bool

	logger logger.Logger
	clock  func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCalculator replaces the ratio engine.
func WithCalculator(c ratios.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.engine = c
		}
	}
}

// WithTitle sets the document title used by exports.
func WithTitle(title string) Option {
	return func(s *Service) {
		if title != "" {
			s.title = title
		}
	}
}

// WithChartTheme sets the echarts theme of the dashboard charts.
func WithChartTheme(theme string) Option {
	return func(s *Service) {
		if theme != "" {
			s.chartTheme = theme
		}
	}
}

// WithClock sets the time source for PDF metadata.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithIndex enables or disables the live index panel.
func WithIndex(enabled bool) Option {
	return func(s *Service) {
		s.indexEnabled = enabled
	}
}

// WithIndexSymbols sets the tracked index tickers.
func WithIndexSymbols(symbols ...string) Option {
	return func(s *Service) {
		if len(symbols) > 0 {
			s.symbols = append([]string(nil), symbols...)
		}
	}
}

// WithIndexRefresh sets the polling interval of the live index.
func WithIndexRefresh(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refresh = d
		}
	}
}

// WithHistorySize bounds the number of kept index samples.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithQueueSize bounds samples waiting to be recorded.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithFetcher sets the quote source. Defaults to a simulated feed.
func WithFetcher(f feed.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engine:       ratios.NewEngine(),
		title:        defaultTitle,
		chartTheme:   defaultChartTheme,
		indexEnabled: true,
		symbols:      append([]string(nil), feed.DefaultSymbols...),
		refresh:      defaultRefresh,
		historySize:  quote.DefaultCapacity,
		queueSize:    defaultQueueSize,
		clock:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.fetcher == nil {
		s.fetcher = feed.NewSimulatedFetcher(time.Now().UnixNano())
	}
	s.history = quote.NewHistory(quote.WithCapacity(s.historySize))
	s.assembler = report.NewAssembler(report.WithTitle(s.title), report.WithClock(s.clock))
	return s
}

func (s *Service) log() logger.Logger { return s.logger }

// Start launches the live index pipeline: poller -> queue -> recorder -> history.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	log := s.log()

	if !s.indexEnabled {
		s.started = true
		log.Info(ctx, "bilanz service started, live index disabled")
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize), queue.WithDropOldest(true))
	poller, err := feed.NewPoller(s.fetcher, s.queue,
		feed.WithSymbols(s.symbols...),
		feed.WithInterval(s.refresh),
	)
	if err != nil {
		_ = s.queue.Close()
		return err
	}
	s.poller = poller
	s.recorder = worker.NewRecorder(s.queue, s.history)

	// The pipeline outlives the request that started it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.recorder.Run(runCtx)
	go s.poller.Run(runCtx)

	s.started = true
	log.Info(ctx, "bilanz service started",
		logger.Any("symbols", s.symbols),
		logger.Duration("refresh", s.refresh),
		logger.Int("history_size", s.history.Cap()),
		logger.Int("queue_size", s.queueSize),
	)
	return nil
}

// Stop shuts the live index pipeline down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	log := s.log()
	log.Info(ctx, "stopping bilanz service...")

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}

	var errs []error
	if s.poller != nil {
		errs = append(errs, s.poller.Stop(ctx))
	}
	if s.queue != nil {
		errs = append(errs, s.queue.Close())
	}
	if s.recorder != nil {
		errs = append(errs, s.recorder.Shutdown(ctx))
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.poller, s.recorder, s.queue, s.cancel = nil, nil, nil, nil
	s.started = false
	if err := errors.Join(errs...); err != nil {
		log.Warn(ctx, "bilanz service stopped with errors", logger.Error(err))
		return err
	}
	log.Info(ctx, "bilanz service stopped")
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"index_enabled": s.indexEnabled,
		"symbols":       append([]string(nil), s.symbols...),
		"refresh_ms":    s.refresh.Milliseconds(),
		"history_size":  s.history.Len(),
		"history_cap":   s.history.Cap(),
	}

	if s.queue != nil {
		queueLen := s.queue.Len()
		stats["queue_length"] = queueLen
		metrics.UpdateQueueSize(queueLen)
	}
	if latest, ok := s.history.Latest(); ok {
		stats["last_sample_at"] = latest.At
	}

	return stats
}
