// Package worker drains live index samples from the queue into the history.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/bilanz/internal/domain/quote"
	"github.com/okian/bilanz/pkg/logger"
	"github.com/okian/bilanz/pkg/metrics"
)

// Queue defines how the recorder receives samples.
type Queue interface {
	Dequeue(ctx context.Context) <-chan quote.Sample
}

// Appender stores samples. quote.History satisfies it.
type Appender interface {
	Append(ctx context.Context, s quote.Sample) int
}

// Recorder appends every dequeued sample to the history.
type Recorder struct {
	queue   Queue
	history Appender
	name    string
	logger  logger.Logger

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}
}

// NewRecorder creates a recorder with configuration options.
func NewRecorder(queue Queue, history Appender, opts ...Option) *Recorder {
	r := &Recorder{
		queue:    queue,
		history:  history,
		name:     "recorder",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named(r.name)
	}
	return r
}

// Run records samples until ctx is cancelled, Shutdown is called or the
// queue is closed and drained.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)

	samples := r.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case s, ok := <-samples:
			if !ok {
				return
			}
			r.record(ctx, s)
		}
	}
}

func (r *Recorder) record(ctx context.Context, s quote.Sample) {
	size := r.history.Append(ctx, s)
	metrics.RecordIndexSample(size)
	r.logger.Debug(ctx, "index sample recorded",
		logger.Int("quotes", len(s.Quotes)),
		logger.Int("history_size", size),
	)
}

// Shutdown stops the recorder and waits for Run to return.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.shutdown) })

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
