package chart_test

import (
	"strings"
	"testing"
	"time"

	"github.com/okian/bilanz/internal/adapters/render/chart"
	"github.com/okian/bilanz/internal/domain/quote"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIndexLinesHTML(t *testing.T) {
	Convey("Given recorded index samples", t, func() {
		at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		samples := []quote.Sample{
			{At: at, Quotes: []quote.Quote{{Symbol: "^GDAXI", Price: 17000}}},
			{At: at.Add(10 * time.Second), Quotes: []quote.Quote{{Symbol: "^GDAXI", Price: 17012.5}}},
		}

		Convey("When rendering lines for a tracked and an untracked symbol", func() {
			out, err := chart.IndexLinesHTML(samples, []string{"^GDAXI", "^GSPC"}, chart.WithIDPrefix("m"))

			Convey("Then only the symbol with prices gets a chart", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 1)
				So(out[0].ID, ShouldEqual, "m_index_0")
				So(string(out[0].Script), ShouldContainSubstring, "17012.5")
				So(strings.Join(out[0].Assets, " "), ShouldContainSubstring, "echarts.min.js")
			})
		})

		Convey("When there are no samples", func() {
			out, err := chart.IndexLinesHTML(nil, []string{"^GDAXI"})
			So(err, ShouldBeNil)
			So(out, ShouldBeEmpty)
		})
	})
}

func TestAssets(t *testing.T) {
	Convey("Given snippets sharing a script", t, func() {
		a := chart.Snippet{Assets: []string{"echarts.min.js", "themes/dark.js"}}
		b := chart.Snippet{Assets: []string{"echarts.min.js"}}
		d := chart.Dashboard{Pies: []chart.Snippet{a}, Ratios: chart.Snippet{ID: "r", Assets: []string{"extra.js"}}}

		So(chart.Assets(a, b), ShouldResemble, []string{"echarts.min.js", "themes/dark.js"})
		So(d.Snippets(), ShouldHaveLength, 2)
		So(chart.Assets(d.Snippets()...), ShouldResemble, []string{"echarts.min.js", "themes/dark.js", "extra.js"})
	})
}
