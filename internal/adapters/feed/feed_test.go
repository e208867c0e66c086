package feed_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/okian/bilanz/internal/adapters/feed"
	"github.com/okian/bilanz/internal/domain/quote"
	logging "github.com/okian/bilanz/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type captureQueue struct {
	mu      sync.Mutex
	samples []quote.Sample
	err     error
}

func (q *captureQueue) Enqueue(_ context.Context, s quote.Sample) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.samples = append(q.samples, s)
	return nil
}

func (q *captureQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.samples)
}

type flakyFetcher struct{ fail map[string]bool }

func (f flakyFetcher) Fetch(_ context.Context, symbol string) (float64, error) {
	if f.fail[symbol] {
		return 0, errors.New("boom")
	}
	return 100, nil
}

func TestSimulatedFetcher(t *testing.T) {
	Convey("Given two simulated fetchers with the same seed", t, func() {
		a := feed.NewSimulatedFetcher(7)
		b := feed.NewSimulatedFetcher(7)
		ctx := context.Background()

		Convey("Then they produce the same walk", func() {
			for i := 0; i < 5; i++ {
				pa, err := a.Fetch(ctx, "^GDAXI")
				So(err, ShouldBeNil)
				pb, _ := b.Fetch(ctx, "^GDAXI")
				So(pa, ShouldEqual, pb)
			}
		})

		Convey("Then each step stays close to the previous price", func() {
			prev, _ := a.Fetch(ctx, "^GSPC")
			next, _ := a.Fetch(ctx, "^GSPC")
			So(next, ShouldAlmostEqual, prev, prev*0.0021)
		})

		Convey("Then a cancelled context is reported", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := a.Fetch(cctx, "^GSPC")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestHTTPFetcher(t *testing.T) {
	Convey("Given a quote server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/chart/^GDAXI":
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"chart":{"result":[{"meta":{"symbol":"^GDAXI","regularMarketPrice":18234.5}}]}}`)
			case "/chart/EMPTY":
				_, _ = io.WriteString(w, `{"chart":{"result":[]}}`)
			default:
				http.Error(w, "not found", http.StatusNotFound)
			}
		}))
		defer srv.Close()

		f, err := feed.NewHTTPFetcher(srv.URL+"/chart/%s", "", time.Second)
		So(err, ShouldBeNil)

		Convey("When the symbol exists", func() {
			p, err := f.Fetch(context.Background(), "^GDAXI")

			Convey("Then the price is extracted by the JSON path", func() {
				So(err, ShouldBeNil)
				So(p, ShouldEqual, 18234.5)
			})
		})

		Convey("When the response has no price", func() {
			_, err := f.Fetch(context.Background(), "EMPTY")
			So(errors.Is(err, feed.ErrNoPrice), ShouldBeTrue)
		})

		Convey("When the server answers with an error status", func() {
			_, err := f.Fetch(context.Background(), "^N225")
			So(errors.Is(err, feed.ErrBadStatus), ShouldBeTrue)
		})
	})

	Convey("Given an invalid price path", t, func() {
		_, err := feed.NewHTTPFetcher("", "$.[", time.Second)
		So(err, ShouldNotBeNil)
	})
}

func TestPoller(t *testing.T) {
	_ = logging.Init(logging.WithOutput(io.Discard))
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	Convey("Given a poller over a simulated source", t, func() {
		q := &captureQueue{}
		p, err := feed.NewPoller(feed.NewSimulatedFetcher(1), q, feed.WithClock(func() time.Time { return at }))
		So(err, ShouldBeNil)

		Convey("When polling once", func() {
			s, ok := p.Poll(context.Background())

			Convey("Then one sample with all three indices is enqueued", func() {
				So(ok, ShouldBeTrue)
				So(s.At, ShouldEqual, at)
				So(s.Quotes, ShouldHaveLength, 3)
				So(s.Quotes[0].Symbol, ShouldEqual, "^GDAXI")
				So(q.count(), ShouldEqual, 1)
			})
		})

		Convey("When the queue rejects the sample", func() {
			q.err = fmt.Errorf("full")
			_, ok := p.Poll(context.Background())
			So(ok, ShouldBeFalse)
		})

		Convey("When running until stopped", func() {
			fast, err := feed.NewPoller(feed.NewSimulatedFetcher(1), q, feed.WithInterval(5*time.Millisecond))
			So(err, ShouldBeNil)
			go fast.Run(context.Background())
			time.Sleep(30 * time.Millisecond)
			So(fast.Stop(context.Background()), ShouldBeNil)

			Convey("Then several samples were produced", func() {
				So(q.count(), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})
	})

	Convey("Given a source where one symbol fails", t, func() {
		q := &captureQueue{}
		p, err := feed.NewPoller(flakyFetcher{fail: map[string]bool{"^GSPC": true}}, q)
		So(err, ShouldBeNil)
		s, ok := p.Poll(context.Background())
		So(ok, ShouldBeTrue)
		So(s.Quotes, ShouldHaveLength, 2)

		Convey("And all symbols fail", func() {
			p, _ := feed.NewPoller(flakyFetcher{fail: map[string]bool{"A": true}}, q, feed.WithSymbols("A"))
			_, ok := p.Poll(context.Background())
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given no fetcher", t, func() {
		_, err := feed.NewPoller(nil, &captureQueue{})
		So(errors.Is(err, feed.ErrNoFetcher), ShouldBeTrue)
	})
}
