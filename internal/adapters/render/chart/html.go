package chart

import (
	"context"
	"fmt"
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"

	bilanzrender "github.com/okian/bilanz/internal/adapters/render"
	"github.com/okian/bilanz/internal/domain/model"
)

// Snippet is an interactive chart ready to be placed into a page.
type Snippet struct {
	ID      string
	Element template.HTML
	Script  template.HTML
	Assets  []string // script URLs the snippet depends on
}

// Dashboard holds the interactive charts of one comparison.
type Dashboard struct {
	Pies   []Snippet
	Ratios Snippet
}

// Snippets returns every chart of the dashboard, pies first.
func (d Dashboard) Snippets() []Snippet {
	out := append([]Snippet(nil), d.Pies...)
	if d.Ratios.ID != "" {
		out = append(out, d.Ratios)
	}
	return out
}

// Assets returns the distinct script URLs of snippets in first-seen order.
func Assets(snippets ...Snippet) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range snippets {
		for _, a := range s.Assets {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// HTML renders one interactive pie per panel.
func HTML(ctx context.Context, a *Artifact, options ...HTMLOption) ([]Snippet, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	cfg := newHTMLConfig(options...)

	out := make([]Snippet, 0, len(a.Panels))
	for i, p := range a.Panels {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render pie %d: %w", i+1, err)
		}
		data := make([]opts.PieData, 0, len(p.Slices))
		for _, s := range p.Slices {
			data = append(data, opts.PieData{
				Name:      s.Label,
				Value:     s.Value,
				ItemStyle: &opts.ItemStyle{Color: s.Color},
			})
		}

		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithInitializationOpts(cfg.initialization(fmt.Sprintf("%s_pie_%d", cfg.idPrefix, i))),
			charts.WithTitleOpts(opts.Title{Title: p.Title, Left: "center"}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Orient: "horizontal", Left: "center", Bottom: "0"}),
		)
		pie.AddSeries(p.Title, data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(!p.Empty()), Formatter: "{b}: {d}%"}),
			charts.WithPieChartOpts(opts.PieChart{Radius: "60%"}),
		)

		s, err := snippet(pie, pie.ChartID, &pie.Assets, pie.AssetsHost)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// RatioBarsHTML renders a grouped bar chart comparing the percentage ratios
// of every period.
func RatioBarsHTML(rows []model.DerivedPeriod, options ...HTMLOption) (Snippet, error) {
	cfg := newHTMLConfig(options...)
	ratioFields := []model.Field{
		model.FieldFixedAssetRatio, model.FieldLiquidity3, model.FieldDebtRatio, model.FieldFixedAssetCoverage2,
	}
	categories := make([]string, len(ratioFields))
	for i, f := range ratioFields {
		categories[i] = f.Column()
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(cfg.initialization(cfg.idPrefix+"_ratios")),
		charts.WithTitleOpts(opts.Title{Title: "Kennzahlen im Vergleich", Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Orient: "horizontal", Left: "center", Bottom: "0"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)
	bar.SetXAxis(categories)
	for _, r := range rows {
		data := make([]opts.BarData, 0, len(ratioFields))
		for _, f := range ratioFields {
			v, _ := r.Value(f)
			data = append(data, opts.BarData{Name: f.Column(), Value: v})
		}
		bar.AddSeries(r.Label, data,
			charts.WithBarChartOpts(opts.BarChart{BarGap: "5%", BarCategoryGap: "25%"}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	}

	return snippet(bar, bar.ChartID, &bar.Assets, bar.AssetsHost)
}

// snippet renders a chart into its element and script parts. The echarts
// templates panic on failure, which is reported as a RenderError.
func snippet(r render.Renderer, id string, assets *opts.Assets, host string) (s Snippet, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = bilanzrender.NewError(artifactName, "echarts template: %v", rec)
		}
	}()

	cs := r.RenderSnippet()
	assets.Validate(host)
	return Snippet{
		ID:      id,
		Element: template.HTML(cs.Element), //nolint:gosec // produced by the echarts templates
		Script:  template.HTML(cs.Script),  //nolint:gosec // produced by the echarts templates
		Assets:  append([]string(nil), assets.JSAssets.Values...),
	}, nil
}
