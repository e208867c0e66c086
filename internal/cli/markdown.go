package cli

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/okian/bilanz/internal/domain/model"
)

const wordWrap = 120

// euro formats amounts the German way, e.g. "1.234,50 €".
var euro = money.NewFormatter(money.GetCurrency(money.EUR).Fraction, ",", ".", money.GetCurrency(money.EUR).Grapheme, "1 $")

// formatEUR formats a major unit amount in euros.
func formatEUR(v float64) string {
	cents := decimal.NewFromFloat(v).Shift(int32(euro.Fraction)).Round(0).IntPart()
	return euro.Format(cents)
}

// formatPlain formats a ratio with two decimals and a decimal comma.
func formatPlain(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}

func isAmount(f model.Field) bool {
	switch f {
	case model.FieldTotalAssets, model.FieldWorkingCapital:
		return true
	}
	for _, in := range model.InputFields() {
		if f == in {
			return true
		}
	}
	return false
}

// Markdown lays out the comparison with one row per column and one column
// per period.
func Markdown(title string, set model.ComparisonSet) string {
	var b strings.Builder
	rows := set.Rows()

	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("| Kennzahl |")
	for _, r := range rows {
		fmt.Fprintf(&b, " %s |", escape(r.Label))
	}
	b.WriteString("\n|:---|")
	for range rows {
		b.WriteString("---:|")
	}
	b.WriteString("\n")

	for _, f := range model.Columns()[1:] {
		fmt.Fprintf(&b, "| %s |", escape(f.Column()))
		for _, r := range rows {
			v, _ := r.Value(f)
			if isAmount(f) {
				fmt.Fprintf(&b, " %s |", formatEUR(v))
			} else {
				fmt.Fprintf(&b, " %s |", formatPlain(v))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown renders md for the terminal. style is a glamour standard
// style name or "auto".
func RenderMarkdown(md, style string) (string, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wordWrap))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutput, err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutput, err)
	}
	return out, nil
}
