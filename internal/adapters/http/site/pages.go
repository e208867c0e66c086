package site

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/bilanz/internal/adapters/http/api"
	"github.com/okian/bilanz/internal/adapters/render/chart"
	"github.com/okian/bilanz/internal/adapters/render/table"
	"github.com/okian/bilanz/internal/domain/model"
	"github.com/okian/bilanz/internal/domain/validation"
	"github.com/okian/bilanz/pkg/logger"
)

var german = message.NewPrinter(language.German)

var funcs = template.FuncMap{
	"num": func(v float64) string { return german.Sprintf("%.2f", v) },
}

type inputCell struct {
	Name  string
	Value string
}

type periodForm struct {
	Label  inputCell
	Inputs []inputCell
}

type resultView struct {
	Header []string
	Rows   [][]string
	Charts []chart.Snippet
	// ChartError explains why charts are missing while the table is shown.
	ChartError string
}

type errorView struct {
	Message string
	Period  string
	Field   string
}

type analysisView struct {
	layoutData
	Fields   []string
	Periods  []periodForm
	Result   *resultView
	Error    *errorView
	Formulas template.HTML
}

func (s *Site) renderAnalysis(w http.ResponseWriter, r *http.Request) {
	view := analysisView{
		layoutData: s.layout(PageAnalysis),
		Formulas:   s.markdown[formulasFile],
	}
	for _, f := range model.InputFields() {
		view.Fields = append(view.Fields, f.Column())
	}

	if r.Method != http.MethodPost {
		view.Periods = periodForms(nil)
		s.execute(w, r, PageAnalysis, http.StatusOK, view)
		return
	}

	raw, err := api.ReadPeriods(w, r, s.cfg.maxBodyBytes)
	if err != nil {
		s.analysisFailed(w, r, view, nil, err)
		return
	}
	view.Periods = periodForms(raw)

	set, err := s.deps.Analyze(r.Context(), raw)
	if err != nil {
		s.analysisFailed(w, r, view, raw, err)
		return
	}

	rows := set.Rows()
	tbl := table.ToTable(rows)
	result := &resultView{Header: tbl.Header, Rows: tbl.Rows}
	dashboard, err := s.deps.Charts(r.Context(), set)
	if err != nil {
		s.logger.Warn(r.Context(), "charts unavailable", logger.Error(err))
		result.ChartError = err.Error()
	} else {
		result.Charts = dashboard.Snippets()
		view.Assets = chart.Assets(result.Charts...)
	}
	view.Result = result
	s.execute(w, r, PageAnalysis, http.StatusOK, view)
}

func (s *Site) analysisFailed(w http.ResponseWriter, r *http.Request, view analysisView, raw []validation.RawPeriod, err error) {
	f := api.Classify(err)
	if view.Periods == nil {
		view.Periods = periodForms(raw)
	}
	view.Error = &errorView{Message: f.Body.Message, Period: f.Body.Period, Field: f.Body.Field}
	if f.Body.Field == "" {
		view.Error.Field = f.Body.Ratio
	}
	s.execute(w, r, PageAnalysis, f.Status, view)
}

// periodForms echoes submitted values back into the form. Without input
// every period starts with its default label and zero values.
func periodForms(raw []validation.RawPeriod) []periodForm {
	forms := make([]periodForm, model.PeriodCount)
	for i := range forms {
		var in validation.RawPeriod
		if i < len(raw) {
			in = raw[i]
		}
		label := api.FormKey(model.FieldLabel, i)
		forms[i].Label = inputCell{Name: label, Value: valueOr(in, model.FieldLabel.Key(), fmt.Sprintf("Jahr %d", i+1))}
		for _, f := range model.InputFields() {
			forms[i].Inputs = append(forms[i].Inputs, inputCell{
				Name:  api.FormKey(f, i),
				Value: valueOr(in, f.Key(), "0"),
			})
		}
	}
	return forms
}

func valueOr(raw validation.RawPeriod, key, fallback string) string {
	if raw == nil {
		return fallback
	}
	if v, ok := raw[key].(string); ok {
		return v
	}
	return fallback
}

type quoteRow struct {
	Symbol string
	Price  float64
	Change float64 // percent since the oldest kept sample
	HasRef bool
}

type marketsView struct {
	layoutData
	Quotes    []quoteRow
	UpdatedAt string
	Samples   int
	Charts    []chart.Snippet
}

func (s *Site) renderMarkets(w http.ResponseWriter, r *http.Request) {
	samples := s.deps.IndexHistory(r.Context())
	symbols := s.deps.IndexSymbols()

	view := marketsView{layoutData: s.layout(PageMarkets), Samples: len(samples)}
	view.Refresh = int(s.cfg.refresh / time.Second)

	if n := len(samples); n > 0 {
		latest, first := samples[n-1], samples[0]
		view.UpdatedAt = latest.At.Local().Format("02.01.2006 15:04:05")
		for _, sym := range symbols {
			price, ok := latest.Price(sym)
			if !ok {
				continue
			}
			row := quoteRow{Symbol: sym, Price: price}
			if ref, ok := first.Price(sym); ok && ref != 0 && n > 1 {
				row.Change = (price - ref) / ref * 100
				row.HasRef = !math.IsInf(row.Change, 0) && !math.IsNaN(row.Change)
			}
			view.Quotes = append(view.Quotes, row)
		}
	}

	charts, err := chart.IndexLinesHTML(samples, symbols, chart.WithTheme(s.cfg.chartTheme), chart.WithIDPrefix("markets"))
	if err != nil {
		s.logger.Warn(r.Context(), "index charts unavailable", logger.Error(err))
	}
	view.Charts = charts
	view.Assets = chart.Assets(charts...)
	s.execute(w, r, PageMarkets, http.StatusOK, view)
}
