// Package queue hands live index samples from the poller to the recorder.
//
// Enqueue never blocks. When the recorder falls behind, new samples are
// rejected, or with WithDropOldest the stalest pending sample makes room so
// the markets page always gets the newest prices.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/bilanz/internal/domain/quote"
	"github.com/okian/bilanz/pkg/metrics"
)

const defaultCapacity = 16

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a sample or returns ErrFull or ErrClosed.
	Enqueue(ctx context.Context, s quote.Sample) error

	// Dequeue returns a channel that receives samples as they arrive.
	// It is closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan quote.Sample

	// Len returns the number of pending samples.
	Len() int

	// Close stops accepting samples.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	samples    chan quote.Sample
	capacity   int
	dropOldest bool

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.samples = make(chan quote.Sample, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a sample to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s quote.Sample) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.samples <- s:
		metrics.UpdateQueueSize(len(q.samples))
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return fmt.Errorf("enqueue sample: %w", ctx.Err())
	default:
	}

	if q.dropOldest && q.evictAndPush(s) {
		metrics.RecordErrorByComponent("queue", "dropped_oldest")
		metrics.UpdateQueueSize(len(q.samples))
		return nil
	}
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", "queue_full")
	return ErrFull
}

// evictAndPush discards the oldest pending sample and stores s. It fails
// only when a concurrent producer refilled the slot first.
func (q *InMemoryQueue) evictAndPush(s quote.Sample) bool {
	select {
	case <-q.samples:
	default:
	}
	select {
	case q.samples <- s:
		return true
	default:
		return false
	}
}

// Dequeue returns a channel that receives samples as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan quote.Sample {
	out := make(chan quote.Sample)
	go func() {
		defer close(out)
		for s := range q.samples {
			select {
			case out <- s:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.samples))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of pending samples.
func (q *InMemoryQueue) Len() int {
	return len(q.samples)
}

// Close stops accepting samples. Pending samples can still be dequeued.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.samples)
	q.closed = true
	return nil
}

// Cap returns the configured capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }
