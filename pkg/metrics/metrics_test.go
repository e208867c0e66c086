package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then metrics use the bilanz namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.analysesTotal.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "bilanz_analysis_analyses_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("x"),
				WithLatencyBuckets([]float64{0.1, 0.5, 1.0}),
				WithSizeBuckets([]float64{1024}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the names and labels follow the options", func() {
				manager.analysesTotal.Inc()
				expected := `
# HELP test_unit_x_analyses_total Total number of comparison sets successfully computed
# TYPE test_unit_x_analyses_total counter
test_unit_x_analyses_total{env="test"} 1
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_unit_x_analyses_total")
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline metrics", func() {
			before := testutil.ToFloat64(globalManager.divisionErrors.WithLabelValues("AV"))
			RecordAnalysis()
			RecordValidationError("UV")
			RecordDivisionByZero("AV")
			RecordOverflow("DebtRatio")
			RecordExport("csv", 256)
			RecordRenderLatency("compute", 0.2)
			RecordRenderError("table")

			Convey("Then the labelled counters move", func() {
				So(testutil.ToFloat64(globalManager.divisionErrors.WithLabelValues("AV")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.exportsTotal.WithLabelValues("csv")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording live index metrics", func() {
			RecordIndexFetch("^GDAXI", 18000.5)
			RecordIndexFetchError("^GSPC")
			RecordIndexSample(7)

			Convey("Then gauges hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.indexLastPrice.WithLabelValues("^GDAXI")), ShouldEqual, 18000.5)
				So(testutil.ToFloat64(globalManager.indexHistorySize), ShouldEqual, 7)
			})
		})

		Convey("When recording queue, HTTP, error and system metrics", func() {
			So(func() {
				UpdateQueueCapacity(64)
				UpdateQueueSize(3)
				RecordQueueEnqueueError()
				RecordQueueDequeue()
				RecordHTTPRequest("ratios", "POST", "200")
				RecordHTTPRequestDuration("ratios", "POST", "200", 1.5)
				RecordErrorByComponent("api", "validation")
				RecordErrorByType("validation", "medium")
				RecordErrorByEndpoint("ratios", "POST", "client_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
		})

		Convey("Then the custom registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
