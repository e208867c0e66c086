package model

import "fmt"

// PeriodCount is the number of periods in a comparison.
const PeriodCount = 2

// Period is one reporting year's raw balance sheet figures.
type Period struct {
	Label string  `json:"label"`
	AV    float64 `json:"AV"`  // Anlagevermögen
	UV    float64 `json:"UV"`  // Umlaufvermögen
	EK    float64 `json:"EK"`  // Eigenkapital
	LFK   float64 `json:"LFK"` // langfristiges Fremdkapital
	KFK   float64 `json:"KFK"` // kurzfristiges Fremdkapital
}

// Value returns the numeric value of an input field.
func (p Period) Value(f Field) (float64, bool) {
	switch f {
	case FieldAV:
		return p.AV, true
	case FieldUV:
		return p.UV, true
	case FieldEK:
		return p.EK, true
	case FieldLFK:
		return p.LFK, true
	case FieldKFK:
		return p.KFK, true
	default:
		return 0, false
	}
}

// DerivedPeriod is a Period plus its computed ratios.
type DerivedPeriod struct {
	Period

	TotalAssets         float64 `json:"TotalAssets"`
	FixedAssetRatio     float64 `json:"FixedAssetRatio"`
	Liquidity3          float64 `json:"Liquidity3"`
	WorkingCapital      float64 `json:"WorkingCapital"`
	FixedAssetCoverage2 float64 `json:"FixedAssetCoverage2"`
	DebtRatio           float64 `json:"DebtRatio"`
}

// Value returns the numeric value of any non-label column.
func (d DerivedPeriod) Value(f Field) (float64, bool) {
	switch f {
	case FieldTotalAssets:
		return d.TotalAssets, true
	case FieldFixedAssetRatio:
		return d.FixedAssetRatio, true
	case FieldLiquidity3:
		return d.Liquidity3, true
	case FieldWorkingCapital:
		return d.WorkingCapital, true
	case FieldFixedAssetCoverage2:
		return d.FixedAssetCoverage2, true
	case FieldDebtRatio:
		return d.DebtRatio, true
	default:
		return d.Period.Value(f)
	}
}

// ComparisonSet holds the two derived periods shown side by side.
type ComparisonSet [PeriodCount]DerivedPeriod

// Rows returns the set as a slice in comparison order.
func (c ComparisonSet) Rows() []DerivedPeriod {
	rows := make([]DerivedPeriod, len(c))
	copy(rows, c[:])
	return rows
}

// NewComparisonSet builds a set from exactly PeriodCount rows with distinct labels.
func NewComparisonSet(rows []DerivedPeriod) (ComparisonSet, error) {
	var set ComparisonSet
	if len(rows) != PeriodCount {
		return set, fmt.Errorf("comparison needs %d periods, got %d: %w", PeriodCount, len(rows), ErrValidation)
	}
	seen := make(map[string]struct{}, len(rows))
	for i, r := range rows {
		if _, dup := seen[r.Label]; dup {
			return set, &ValidationError{Index: i, Period: r.Label, Field: FieldLabel, Reason: "duplicate label"}
		}
		seen[r.Label] = struct{}{}
		set[i] = r
	}
	return set, nil
}
