// Package quote holds live index samples and their bounded history.
package quote

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity is the number of samples kept for the markets panel.
const DefaultCapacity = 50

// Quote is the last price of one index symbol.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Sample is one refresh tick across all tracked symbols.
type Sample struct {
	At     time.Time `json:"at"`
	Quotes []Quote   `json:"quotes"`
}

// Price returns the price of symbol in this sample.
func (s Sample) Price(symbol string) (float64, bool) {
	for _, q := range s.Quotes {
		if q.Symbol == symbol {
			return q.Price, true
		}
	}
	return 0, false
}

// History stores the most recent samples. Appending beyond capacity drops
// the oldest sample.
type History interface {
	// Append records a sample and returns the new length.
	Append(ctx context.Context, s Sample) int
	// Snapshot returns a copy of the samples, oldest first.
	Snapshot() []Sample
	// Latest returns the newest sample.
	Latest() (Sample, bool)
	Len() int
	Cap() int
}

// ring implements History with a fixed size circular buffer.
type ring struct {
	mu    sync.RWMutex
	buf   []Sample
	start int // index of the oldest sample
	size  int
}

// NewHistory creates a history with configuration options.
func NewHistory(opts ...Option) History {
	cfg := config{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ring{buf: make([]Sample, cfg.capacity)}
}

func (r *ring) Append(_ context.Context, s Sample) int {
	s.Quotes = append([]Quote(nil), s.Quotes...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = s
		r.size++
		return r.size
	}
	r.buf[r.start] = s
	r.start = (r.start + 1) % len(r.buf)
	return r.size
}

func (r *ring) Snapshot() []Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Sample, r.size)
	for i := 0; i < r.size; i++ {
		s := r.buf[(r.start+i)%len(r.buf)]
		s.Quotes = append([]Quote(nil), s.Quotes...)
		out[i] = s
	}
	return out
}

func (r *ring) Latest() (Sample, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.size == 0 {
		return Sample{}, false
	}
	s := r.buf[(r.start+r.size-1)%len(r.buf)]
	s.Quotes = append([]Quote(nil), s.Quotes...)
	return s, true
}

func (r *ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

func (r *ring) Cap() int { return len(r.buf) }
