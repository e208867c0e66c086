package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/bilanz/internal/config"
	"github.com/okian/bilanz/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithOutput(io.Discard))
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.IndexEnabled = false
	return cfg
}

func TestNewService(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := testConfig()

		convey.Convey("When the index source is simulated", func() {
			svc, err := newService(cfg)

			convey.Convey("Then the service is built with the configured settings", func() {
				convey.So(err, convey.ShouldBeNil)
				stats := svc.GetStats()
				convey.So(stats["index_enabled"], convey.ShouldEqual, false)
				convey.So(stats["history_cap"], convey.ShouldEqual, cfg.IndexHistorySize)
			})
		})

		convey.Convey("When the index source is http", func() {
			cfg.IndexSource = config.SourceHTTP
			svc, err := newService(cfg)

			convey.Convey("Then the service is built with an HTTP fetcher", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the assembled HTTP handler", t, func() {
		cfg := testConfig()
		cfg.CORSOrigins = []string{"https://example.org"}
		svc, err := newService(cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		handler, err := newHandler(cfg, svc)
		convey.So(err, convey.ShouldBeNil)

		get := func(path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return rec
		}

		convey.Convey("Then the API, docs and site are all routed", func() {
			for _, path := range []string{"/healthz", "/stats", "/api/v1/index", "/api-docs", "/openapi.yaml", "/", "/bilanzanalyse", "/impressum", "/static/site.css"} {
				convey.So(get(path).Code, convey.ShouldEqual, http.StatusOK)
			}
			convey.So(get("/does-not-exist").Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("Then ratios can be computed through the full stack", func() {
			body := `{"periods":[{"label":"2023","AV":100,"UV":50,"EK":80,"LFK":30,"KFK":40},{"label":"2024","AV":120,"UV":60,"EK":90,"LFK":30,"KFK":30}]}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/ratios", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Origin", "https://example.org")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"label":"2023"`)
			convey.So(rec.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "https://example.org")
			convey.So(rec.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
		})
	})
}

func TestInitLogger(t *testing.T) {
	convey.Convey("Given a logging configuration with a file", t, func() {
		cfg := config.New()
		cfg.LogLevel = "debug"
		cfg.LogFormat = "json"
		cfg.LogFile = t.TempDir() + "/logs/bilanz.log"

		convey.Convey("Then the logger initializes", func() {
			convey.So(initLogger(cfg), convey.ShouldBeNil)
			logger.Get().Info(context.Background(), "hello")
			convey.So(logger.Sync(), convey.ShouldBeNil)
			// Restore the quiet logger for the other tests.
			convey.So(logger.Init(logger.WithOutput(io.Discard)), convey.ShouldBeNil)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loop returns once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("metrics updater did not stop")
			}
		})
	})
}
