// Package chart builds the balance structure pie charts of a comparison.
package chart

import (
	"fmt"
	"math"

	"github.com/okian/bilanz/internal/adapters/render"
	"github.com/okian/bilanz/internal/domain/model"
)

// DefaultTitle is the caption of the chart page.
const DefaultTitle = "Bilanzstruktur im Vergleich"

const artifactName = "chart"

// Palette colors the five balance positions, in input field order.
var Palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd"}

// Slice is one sector of a pie.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Panel is the pie of one period.
type Panel struct {
	Title  string  `json:"title"`
	Slices []Slice `json:"slices"`
}

// Artifact is the render-ready chart of a comparison.
type Artifact struct {
	Title  string  `json:"title"`
	Panels []Panel `json:"panels"`
}

// Build creates one pie panel per period from AV, UV, EK, LFK and KFK.
func Build(rows []model.DerivedPeriod) *Artifact {
	a := &Artifact{Title: DefaultTitle, Panels: make([]Panel, 0, len(rows))}
	fields := model.InputFields()
	for _, r := range rows {
		p := Panel{Title: "Bilanzstruktur " + r.Label, Slices: make([]Slice, 0, len(fields))}
		for i, f := range fields {
			v, _ := r.Value(f)
			p.Slices = append(p.Slices, Slice{Label: f.Key(), Value: v, Color: Palette[i%len(Palette)]})
		}
		a.Panels = append(a.Panels, p)
	}
	return a
}

// Validate reports a RenderError for an artifact without panels or with a
// slice that cannot be drawn as a sector.
func (a *Artifact) Validate() error {
	if a == nil {
		return render.NewError(artifactName, "artifact is nil")
	}
	if len(a.Panels) == 0 {
		return render.NewError(artifactName, "no panels")
	}
	for i, p := range a.Panels {
		if len(p.Slices) == 0 {
			return render.NewError(artifactName, "panel %d has no slices", i+1)
		}
		for _, s := range p.Slices {
			if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
				return render.NewError(artifactName, "panel %q: slice %s is not finite", p.Title, s.Label)
			}
			if s.Value < 0 {
				return render.NewError(artifactName, "panel %q: slice %s is negative", p.Title, s.Label)
			}
		}
	}
	return nil
}

// Total is the sum of all slice values.
func (p Panel) Total() float64 {
	var sum float64
	for _, s := range p.Slices {
		sum += s.Value
	}
	return sum
}

// Empty reports whether the panel has nothing to draw.
func (p Panel) Empty() bool { return p.Total() == 0 }

// Shares returns each slice as a percentage of the panel total.
func (p Panel) Shares() []float64 {
	out := make([]float64, len(p.Slices))
	total := p.Total()
	if total == 0 {
		return out
	}
	for i, s := range p.Slices {
		out[i] = s.Value / total * 100
	}
	return out
}

// FormatShare renders a share the way the pie labels show it.
func FormatShare(share float64) string {
	return fmt.Sprintf("%.1f%%", share)
}
