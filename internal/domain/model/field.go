// Package model contains domain models passed between layers.
package model

// Field identifies one column of the comparison table, raw or derived.
type Field int

// Fields in export column order.
const (
	FieldLabel Field = iota
	FieldAV
	FieldUV
	FieldEK
	FieldLFK
	FieldKFK
	FieldTotalAssets
	FieldFixedAssetRatio
	FieldLiquidity3
	FieldWorkingCapital
	FieldFixedAssetCoverage2
	FieldDebtRatio
	fieldCount
)

var fieldKeys = [fieldCount]string{
	"label", "AV", "UV", "EK", "LFK", "KFK",
	"TotalAssets", "FixedAssetRatio", "Liquidity3", "WorkingCapital", "FixedAssetCoverage2", "DebtRatio",
}

var fieldColumns = [fieldCount]string{
	"Jahr", "AV", "UV", "EK", "LFK", "KFK",
	"Gesamtvermögen",
	"Anlagenintensität (%)",
	"Liquidität 3 (%)",
	"Working Capital",
	"Anlagendeckung 2 (%)",
	"Verschuldungsgrad (%)",
}

// Key is the identifier used in JSON payloads, form input and error reports.
func (f Field) Key() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldKeys[f]
}

// Column is the exported column header.
func (f Field) Column() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldColumns[f]
}

func (f Field) String() string { return f.Key() }

// Columns lists every table column in export order.
func Columns() []Field {
	cols := make([]Field, fieldCount)
	for i := range cols {
		cols[i] = Field(i)
	}
	return cols
}

// InputFields are the numeric balance sheet positions a Period is built from.
func InputFields() []Field {
	return []Field{FieldAV, FieldUV, FieldEK, FieldLFK, FieldKFK}
}

// ColumnHeaders returns the header row shared by every tabular export.
func ColumnHeaders() []string {
	out := make([]string, fieldCount)
	copy(out, fieldColumns[:])
	return out
}
