package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/bilanz/internal/domain/quote"
	"github.com/okian/bilanz/pkg/logger"
	"github.com/okian/bilanz/pkg/metrics"
)

const defaultInterval = 10 * time.Second

// Enqueuer accepts samples. queue.Queue satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, s quote.Sample) error
}

// Poller fetches all symbols on every tick and enqueues one sample.
type Poller struct {
	fetcher  Fetcher
	queue    Enqueuer
	symbols  []string
	interval time.Duration
	now      func() time.Time
	logger   logger.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewPoller creates a poller with configuration options.
func NewPoller(fetcher Fetcher, queue Enqueuer, opts ...Option) (*Poller, error) {
	if fetcher == nil {
		return nil, ErrNoFetcher
	}
	p := &Poller{
		fetcher:  fetcher,
		queue:    queue,
		symbols:  append([]string(nil), DefaultSymbols...),
		interval: defaultInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if len(p.symbols) == 0 {
		return nil, ErrNoSymbols
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("feed")
	}
	return p, nil
}

// Run polls once immediately and then on every tick until ctx is cancelled
// or Stop is called.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll fetches every symbol once. Symbols that fail are left out of the
// sample; a tick where all fail produces no sample.
func (p *Poller) Poll(ctx context.Context) (quote.Sample, bool) {
	s := quote.Sample{At: p.now(), Quotes: make([]quote.Quote, 0, len(p.symbols))}
	for _, sym := range p.symbols {
		price, err := p.fetcher.Fetch(ctx, sym)
		if err != nil {
			metrics.RecordIndexFetchError(sym)
			if !errors.Is(err, context.Canceled) {
				p.logger.Warn(ctx, "index fetch failed", logger.String("symbol", sym), logger.Error(err))
			}
			continue
		}
		metrics.RecordIndexFetch(sym, price)
		s.Quotes = append(s.Quotes, quote.Quote{Symbol: sym, Price: price})
	}
	if len(s.Quotes) == 0 {
		return s, false
	}

	if err := p.queue.Enqueue(ctx, s); err != nil {
		p.logger.Warn(ctx, "index sample dropped", logger.Error(err))
		return s, false
	}
	return s, true
}

// Stop ends Run and waits for it to return.
func (p *Poller) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stop) })
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
