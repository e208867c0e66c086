package chart_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/okian/bilanz/internal/adapters/render"
	"github.com/okian/bilanz/internal/adapters/render/chart"
	"github.com/okian/bilanz/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rows() []model.DerivedPeriod {
	return []model.DerivedPeriod{
		{Period: model.Period{Label: "Jahr 1", AV: 100, UV: 50, EK: 80, LFK: 30, KFK: 40}, FixedAssetRatio: 66.67, Liquidity3: 125, DebtRatio: 87.5, FixedAssetCoverage2: 1.1},
		{Period: model.Period{Label: "Jahr 2", AV: 120, UV: 60, EK: 90, LFK: 30, KFK: 30}, FixedAssetRatio: 66.67, Liquidity3: 200, DebtRatio: 66.67, FixedAssetCoverage2: 1},
	}
}

func TestBuild(t *testing.T) {
	Convey("Given two derived periods", t, func() {
		a := chart.Build(rows())

		Convey("Then there is one pie per period", func() {
			So(a.Panels, ShouldHaveLength, 2)
			So(a.Panels[0].Title, ShouldEqual, "Bilanzstruktur Jahr 1")
			So(a.Validate(), ShouldBeNil)
		})

		Convey("Then slices follow the balance positions and palette", func() {
			s := a.Panels[1].Slices
			So(s, ShouldHaveLength, 5)
			So(s[0], ShouldResemble, chart.Slice{Label: "AV", Value: 120, Color: "#1f77b4"})
			So(s[4], ShouldResemble, chart.Slice{Label: "KFK", Value: 30, Color: "#9467bd"})
		})

		Convey("Then shares add up to the whole", func() {
			p := a.Panels[0]
			So(p.Total(), ShouldEqual, 300.0)
			shares := p.Shares()
			So(chart.FormatShare(shares[0]), ShouldEqual, "33.3%")
			So(chart.FormatShare(shares[1]), ShouldEqual, "16.7%")
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given malformed chart artifacts", t, func() {
		Convey("When there are no panels", func() {
			err := chart.Build(nil).Validate()
			So(errors.Is(err, render.ErrRender), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "render chart: no panels")
		})

		Convey("When a slice is negative", func() {
			r := rows()
			r[0].EK = -5
			err := chart.Build(r).Validate()
			So(errors.Is(err, render.ErrRender), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "slice EK is negative")
		})

		Convey("When a slice is NaN", func() {
			a := chart.Build(rows())
			a.Panels[0].Slices[2].Value = math.NaN()
			So(errors.Is(a.Validate(), render.ErrRender), ShouldBeTrue)
		})

		Convey("When a panel is all zero", func() {
			a := chart.Build([]model.DerivedPeriod{{Period: model.Period{Label: "leer"}}})

			Convey("Then it is still drawable", func() {
				So(a.Validate(), ShouldBeNil)
				So(a.Panels[0].Empty(), ShouldBeTrue)
				So(a.Panels[0].Shares(), ShouldResemble, []float64{0, 0, 0, 0, 0})
			})
		})
	})
}

func TestHTML(t *testing.T) {
	Convey("Given a chart artifact", t, func() {
		a := chart.Build(rows())

		Convey("When rendering interactive pies", func() {
			snippets, err := chart.HTML(context.Background(), a, chart.WithIDPrefix("t"), chart.WithTheme("dark"))

			Convey("Then every panel gets a container and a script", func() {
				So(err, ShouldBeNil)
				So(snippets, ShouldHaveLength, 2)
				So(snippets[0].ID, ShouldEqual, "t_pie_0")
				So(string(snippets[0].Element), ShouldContainSubstring, `id="t_pie_0"`)
				So(string(snippets[1].Script), ShouldContainSubstring, "Bilanzstruktur Jahr 2")
				So(string(snippets[1].Script), ShouldContainSubstring, "#9467bd")
				So(strings.Join(snippets[0].Assets, " "), ShouldContainSubstring, "echarts.min.js")
			})
		})

		Convey("When the artifact is malformed", func() {
			_, err := chart.HTML(context.Background(), &chart.Artifact{})
			So(errors.Is(err, render.ErrRender), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := chart.HTML(ctx, a)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given derived rows", t, func() {
		s, err := chart.RatioBarsHTML(rows(), chart.WithIDPrefix("cmp"))

		Convey("Then a grouped bar chart compares the ratios", func() {
			So(err, ShouldBeNil)
			So(s.ID, ShouldEqual, "cmp_ratios")
			So(string(s.Script), ShouldContainSubstring, "Liquidität 3 (%)")
			So(string(s.Script), ShouldContainSubstring, "Jahr 1")
		})
	})
}
