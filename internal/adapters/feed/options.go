package feed

import (
	"time"

	"github.com/okian/bilanz/pkg/logger"
)

// Option applies a configuration option to the Poller.
type Option func(*Poller)

// WithSymbols sets the index symbols fetched on every tick.
func WithSymbols(symbols ...string) Option {
	return func(p *Poller) {
		if len(symbols) > 0 {
			p.symbols = append([]string(nil), symbols...)
		}
	}
}

// WithInterval sets the refresh interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock sets the time source stamped onto samples.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets a custom logger for the poller.
func WithLogger(l logger.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}
