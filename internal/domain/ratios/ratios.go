// Package ratios derives the balance sheet ratios of a period.
package ratios

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/okian/bilanz/internal/domain/model"
)

// Default engine configuration.
const (
	defaultPlaces = 2
	percent       = 100
)

// Denominator names reported by DivisionByZeroError.
const (
	DenominatorTotalAssets = "TotalAssets"
	DenominatorKFK         = "KFK"
	DenominatorAV          = "AV"
	DenominatorEK          = "EK"
)

// Calculator derives ratios for a sequence of periods.
type Calculator interface {
	// Compute is order preserving and one-to-one. It fails on the first
	// period with a zero denominator and returns no partial result.
	Compute(periods []model.Period) ([]model.DerivedPeriod, error)
	// CompareSet computes the fixed two-period comparison.
	CompareSet(periods [model.PeriodCount]model.Period) (model.ComparisonSet, error)
}

// Engine implements Calculator. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	places int32
}

// NewEngine creates an engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{places: defaultPlaces}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute derives every period independently.
func (e *Engine) Compute(periods []model.Period) ([]model.DerivedPeriod, error) {
	out := make([]model.DerivedPeriod, 0, len(periods))
	for _, p := range periods {
		d, err := e.Derive(p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// CompareSet computes both periods of a comparison.
func (e *Engine) CompareSet(periods [model.PeriodCount]model.Period) (model.ComparisonSet, error) {
	rows, err := e.Compute(periods[:])
	if err != nil {
		return model.ComparisonSet{}, err
	}
	return model.NewComparisonSet(rows)
}

// Derive computes the six derived fields of one period. Denominators are
// checked in formula order: TotalAssets, KFK, AV, EK.
func (e *Engine) Derive(p model.Period) (model.DerivedPeriod, error) {
	d := model.DerivedPeriod{Period: p}

	d.TotalAssets = p.AV + p.UV
	if !finite(d.TotalAssets) {
		return model.DerivedPeriod{}, &model.OverflowError{Period: p.Label, Ratio: model.FieldTotalAssets}
	}

	var err error
	if d.FixedAssetRatio, err = e.ratio(p.Label, model.FieldFixedAssetRatio, p.AV, d.TotalAssets, DenominatorTotalAssets, percent); err != nil {
		return model.DerivedPeriod{}, err
	}
	if d.Liquidity3, err = e.ratio(p.Label, model.FieldLiquidity3, p.UV, p.KFK, DenominatorKFK, percent); err != nil {
		return model.DerivedPeriod{}, err
	}

	d.WorkingCapital = p.UV - p.KFK
	if !finite(d.WorkingCapital) {
		return model.DerivedPeriod{}, &model.OverflowError{Period: p.Label, Ratio: model.FieldWorkingCapital}
	}

	// Anlagendeckung 2 is reported as a plain factor.
	if d.FixedAssetCoverage2, err = e.ratio(p.Label, model.FieldFixedAssetCoverage2, p.EK+p.LFK, p.AV, DenominatorAV, 1); err != nil {
		return model.DerivedPeriod{}, err
	}
	if d.DebtRatio, err = e.ratio(p.Label, model.FieldDebtRatio, p.LFK+p.KFK, p.EK, DenominatorEK, percent); err != nil {
		return model.DerivedPeriod{}, err
	}
	return d, nil
}

func (e *Engine) ratio(period string, field model.Field, num, den float64, denName string, scale float64) (float64, error) {
	if den == 0 {
		return 0, &model.DivisionByZeroError{Period: period, Ratio: field, Denominator: denName}
	}
	q := num / den * scale
	if !finite(q) {
		return 0, &model.OverflowError{Period: period, Ratio: field}
	}
	return Round(q, e.places), nil
}

// Round rounds half to even at the given number of decimal places,
// working on the shortest decimal representation of v. Binary near-ties
// therefore round on their decimal reading: 2.675 gives 2.68, while
// rounding the stored binary value (2.67499...) would give 2.67.
func Round(v float64, places int32) float64 {
	r, _ := decimal.NewFromFloat(v).RoundBank(places).Float64()
	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
