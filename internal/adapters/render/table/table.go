// Package table renders derived periods as CSV bytes and as a table artifact.
package table

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/okian/bilanz/internal/adapters/render"
	"github.com/okian/bilanz/internal/domain/model"
)

// DefaultTitle is the caption of the table page.
const DefaultTitle = "Bilanzanalyse"

const artifactName = "table"

// Artifact is a static tabular rendering. Cells are identical to the CSV
// export, including column order.
type Artifact struct {
	Title  string     `json:"title"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Validate reports a RenderError when the header is empty or a row does not
// match the header width.
func (a *Artifact) Validate() error {
	if a == nil {
		return render.NewError(artifactName, "artifact is nil")
	}
	if len(a.Header) == 0 {
		return render.NewError(artifactName, "header is empty")
	}
	for i, row := range a.Rows {
		if len(row) != len(a.Header) {
			return render.NewError(artifactName, "row %d has %d cells, header has %d", i+1, len(row), len(a.Header))
		}
	}
	return nil
}

// Clone returns a deep copy, so renderers can work without touching the caller's artifact.
func (a *Artifact) Clone() *Artifact {
	out := &Artifact{Title: a.Title, Header: append([]string(nil), a.Header...)}
	out.Rows = make([][]string, len(a.Rows))
	for i, r := range a.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// ToCSV writes one header line and one line per period. Empty input yields
// the header line only.
func ToCSV(rows []model.DerivedPeriod) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(model.ColumnHeaders()); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(Cells(r)); err != nil {
			return nil, fmt.Errorf("write csv row %q: %w", r.Label, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ToTable builds the printable artifact for rows.
func ToTable(rows []model.DerivedPeriod, opts ...Option) *Artifact {
	a := &Artifact{Title: DefaultTitle, Header: model.ColumnHeaders(), Rows: make([][]string, 0, len(rows))}
	for _, opt := range opts {
		opt(a)
	}
	for _, r := range rows {
		a.Rows = append(a.Rows, Cells(r))
	}
	return a
}

// Cells formats one period in column order.
func Cells(r model.DerivedPeriod) []string {
	cols := model.Columns()
	out := make([]string, len(cols))
	for i, f := range cols {
		if f == model.FieldLabel {
			out[i] = r.Label
			continue
		}
		v, _ := r.Value(f)
		out[i] = render.FormatNumber(v)
	}
	return out
}
