package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/bilanz/internal/adapters/render/chart"
	"github.com/okian/bilanz/internal/adapters/render/table"
	"github.com/okian/bilanz/internal/domain/model"
	"github.com/okian/bilanz/internal/domain/quote"
	"github.com/okian/bilanz/internal/domain/validation"
	"github.com/okian/bilanz/pkg/logger"
	"github.com/okian/bilanz/pkg/metrics"
)

// Analyze validates two raw periods and derives their ratios.
func (s *Service) Analyze(ctx context.Context, raw []validation.RawPeriod) (model.ComparisonSet, error) {
	if err := ctx.Err(); err != nil {
		return model.ComparisonSet{}, err
	}
	periods, err := validation.Validate(raw)
	if err != nil {
		s.recordFailure(ctx, "validate", err)
		return model.ComparisonSet{}, err
	}
	set, err := s.engine.CompareSet(periods)
	if err != nil {
		s.recordFailure(ctx, "derive", err)
		return model.ComparisonSet{}, err
	}

	metrics.RecordAnalysis()
	s.log().Debug(ctx, "comparison derived",
		logger.String("first", set[0].Label),
		logger.String("second", set[1].Label),
	)
	return set, nil
}

// ExportCSV analyzes raw and returns the derived table as CSV.
func (s *Service) ExportCSV(ctx context.Context, raw []validation.RawPeriod) ([]byte, error) {
	set, err := s.Analyze(ctx, raw)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := table.ToCSV(set.Rows())
	metrics.RecordRenderLatency("csv", msSince(start))
	if err != nil {
		s.recordFailure(ctx, "csv", err)
		return nil, err
	}
	metrics.RecordExport("csv", len(out))
	return out, nil
}

// ExportPDF analyzes raw and assembles the two page report.
func (s *Service) ExportPDF(ctx context.Context, raw []validation.RawPeriod) ([]byte, error) {
	set, err := s.Analyze(ctx, raw)
	if err != nil {
		return nil, err
	}
	return s.Report(ctx, set)
}

// Report assembles the PDF of an already derived comparison.
func (s *Service) Report(ctx context.Context, set model.ComparisonSet) ([]byte, error) {
	rows := set.Rows()

	start := time.Now()
	tbl := table.ToTable(rows, table.WithTitle(s.title))
	metrics.RecordRenderLatency("table", msSince(start))

	start = time.Now()
	pies := chart.Build(rows)
	metrics.RecordRenderLatency("chart", msSince(start))

	start = time.Now()
	out, err := s.assembler.Assemble(ctx, tbl, pies)
	metrics.RecordRenderLatency("pdf", msSince(start))
	if err != nil {
		s.recordFailure(ctx, "pdf", err)
		return nil, err
	}

	metrics.RecordExport("pdf", len(out))
	s.log().Info(ctx, "report assembled", logger.Int("bytes", len(out)))
	return out, nil
}

// Charts renders the structure pies and the ratio bars of a comparison.
func (s *Service) Charts(ctx context.Context, set model.ComparisonSet) (chart.Dashboard, error) {
	rows := set.Rows()
	theme := chart.WithTheme(s.chartTheme)

	start := time.Now()
	pies, err := chart.HTML(ctx, chart.Build(rows), theme)
	if err != nil {
		s.recordFailure(ctx, "chart", err)
		return chart.Dashboard{}, err
	}
	bars, err := chart.RatioBarsHTML(rows, theme)
	if err != nil {
		s.recordFailure(ctx, "chart", err)
		return chart.Dashboard{}, err
	}
	metrics.RecordRenderLatency("chart_html", msSince(start))
	return chart.Dashboard{Pies: pies, Ratios: bars}, nil
}

// IndexHistory returns the recorded index samples, oldest first.
func (s *Service) IndexHistory(_ context.Context) []quote.Sample {
	return s.history.Snapshot()
}

// IndexSymbols returns the tracked index tickers.
func (s *Service) IndexSymbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.symbols...)
}

func (s *Service) recordFailure(ctx context.Context, stage string, err error) {
	var (
		verr *model.ValidationError
		derr *model.DivisionByZeroError
		oerr *model.OverflowError
	)
	switch {
	case errors.As(err, &verr):
		metrics.RecordValidationError(verr.Field.Key())
	case errors.Is(err, model.ErrValidation):
		metrics.RecordValidationError("periods")
	case errors.As(err, &derr):
		metrics.RecordDivisionByZero(derr.Denominator)
	case errors.As(err, &oerr):
		metrics.RecordOverflow(oerr.Ratio.Key())
	default:
		metrics.RecordRenderError(stage)
		metrics.RecordErrorByComponent("service", stage)
		s.log().Error(ctx, "render failed", logger.String("stage", stage), logger.Error(err))
		return
	}
	s.log().Debug(ctx, "analysis rejected", logger.String("stage", stage), logger.Error(err))
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
