package worker_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/okian/bilanz/internal/adapters/mq/queue"
	"github.com/okian/bilanz/internal/adapters/mq/worker"
	"github.com/okian/bilanz/internal/domain/quote"
	logging "github.com/okian/bilanz/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// mockQueue hands out a channel the test feeds directly.
type mockQueue struct {
	samples chan quote.Sample
}

func newMockQueue() *mockQueue {
	return &mockQueue{samples: make(chan quote.Sample, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan quote.Sample { return mq.samples }

func sample(price float64) quote.Sample {
	return quote.Sample{At: time.Now(), Quotes: []quote.Quote{{Symbol: "^STOXX50E", Price: price}}}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestRecorder(t *testing.T) {
	convey.Convey("Given a recorder over a history", t, func() {
		_ = logging.Init(logging.WithOutput(io.Discard))

		mq := newMockQueue()
		history := quote.NewHistory(quote.WithCapacity(3))
		rec := worker.NewRecorder(mq, history, worker.WithName("test-recorder"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go rec.Run(ctx)

		convey.Convey("When samples arrive", func() {
			for i := 1; i <= 5; i++ {
				mq.samples <- sample(float64(i))
			}

			convey.Convey("Then the newest ones are kept in the history", func() {
				convey.So(waitFor(func() bool {
					latest, ok := history.Latest()
					return ok && latest.Quotes[0].Price == 5
				}), convey.ShouldBeTrue)
				convey.So(history.Len(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When shut down", func() {
			err := rec.Shutdown(context.Background())

			convey.Convey("Then Run returns and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a recorder on a real queue", t, func() {
		_ = logging.Init(logging.WithOutput(io.Discard))

		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		history := quote.NewHistory()
		rec := worker.NewRecorder(q, history)
		go rec.Run(context.Background())

		convey.Convey("When the queue is closed after a sample", func() {
			convey.So(q.Enqueue(context.Background(), sample(4200)), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then the sample is recorded and the recorder stops", func() {
				convey.So(waitFor(func() bool { return history.Len() == 1 }), convey.ShouldBeTrue)
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				convey.So(rec.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})
}
