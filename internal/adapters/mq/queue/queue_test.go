package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/bilanz/internal/domain/quote"
)

func sample(price float64) quote.Sample {
	return quote.Sample{
		At:     time.Unix(0, 0).UTC(),
		Quotes: []quote.Quote{{Symbol: "^GDAXI", Price: price}},
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, sample(18000)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if p, _ := got.Price("^GDAXI"); p != 18000 {
		t.Errorf("expected price 18000, got %v", p)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := q.Enqueue(ctx, sample(float64(i))); err != nil {
			t.Fatalf("expected enqueue %d to succeed, got %v", i, err)
		}
	}

	if err := q.Enqueue(ctx, sample(3)); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(8))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers, perProducer = 4, 25
	var received sync.WaitGroup
	received.Add(producers * perProducer)
	go func() {
		for range q.Dequeue(ctx) {
			received.Done()
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				for q.Enqueue(ctx, sample(float64(id*100+j))) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	wg.Wait()

	done := make(chan struct{})
	go func() {
		received.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all samples were dequeued")
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if err := q.Enqueue(ctx, sample(1)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if q.Cap() != 10 {
		t.Errorf("expected capacity 10, got %d", q.Cap())
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got %v", err)
	}
	if err := q.Enqueue(ctx, sample(2)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Pending samples drain before the channel closes.
	ch := q.Dequeue(ctx)
	timeout := time.After(time.Second)
	var drained int
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				if drained != 1 {
					t.Errorf("expected 1 drained sample, got %d", drained)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got %v", err)
				}
				return
			}
			drained++
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A free slot wins over a cancelled context in the select, so fill it first.
	_ = q.Enqueue(context.Background(), sample(1))
	err := q.Enqueue(ctx, sample(2))
	if err == nil {
		t.Fatal("expected enqueue to fail")
	}
}

func TestInMemoryQueue_DropOldest(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2), WithDropOldest(true))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 1; i <= 4; i++ {
		if err := q.Enqueue(ctx, sample(float64(i))); err != nil {
			t.Fatalf("enqueue %d: expected success, got %v", i, err)
		}
	}
	if l := q.Len(); l != 2 {
		t.Fatalf("expected length 2, got %d", l)
	}
	_ = q.Close()

	var prices []float64
	for s := range q.Dequeue(ctx) {
		prices = append(prices, s.Quotes[0].Price)
	}
	if len(prices) != 2 || prices[0] != 3 || prices[1] != 4 {
		t.Errorf("expected the two newest samples [3 4], got %v", prices)
	}
}
