package chart

import (
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okian/bilanz/internal/domain/quote"
)

const timeLayout = "15:04:05"

// IndexLinesHTML renders one line chart per symbol over the recorded
// samples. Symbols without any price are skipped.
func IndexLinesHTML(samples []quote.Sample, symbols []string, options ...HTMLOption) ([]Snippet, error) {
	if len(samples) == 0 {
		return nil, nil
	}
	cfg := newHTMLConfig(options...)

	out := make([]Snippet, 0, len(symbols))
	for i, sym := range symbols {
		times := make([]string, 0, len(samples))
		data := make([]opts.LineData, 0, len(samples))
		for _, s := range samples {
			price, ok := s.Price(sym)
			if !ok {
				continue
			}
			times = append(times, s.At.Local().Format(timeLayout))
			data = append(data, opts.LineData{Value: price})
		}
		if len(data) == 0 {
			continue
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(cfg.initialization(fmt.Sprintf("%s_index_%d", cfg.idPrefix, i))),
			charts.WithTitleOpts(opts.Title{Title: sym, Left: "center"}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
		)
		line.SetXAxis(times).AddSeries(strings.TrimPrefix(sym, "^"), data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
		)

		s, err := snippet(line, line.ChartID, &line.Assets, line.AssetsHost)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
