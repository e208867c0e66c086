// Package report assembles the exported PDF: the table on page one and the
// balance structure pies on page two.
package report

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/okian/bilanz/internal/adapters/render"
	"github.com/okian/bilanz/internal/adapters/render/chart"
	"github.com/okian/bilanz/internal/adapters/render/table"
)

// Page layout in millimetres, landscape A4.
const (
	margin        = 15.0
	titleSize     = 16.0
	bodySize      = 9.0
	minBodySize   = 5.0
	rowHeight     = 8.0
	cellPadding   = 3.0
	sectorStepDeg = 2.0
	pieStartDeg   = 90.0
	legendBox     = 4.0
)

const artifactName = "report"

// Assembler produces PDF documents. It keeps no state between calls and is
// safe for concurrent use.
type Assembler struct {
	title    string
	creator  string
	clock    func() time.Time
	compress bool
}

// NewAssembler creates an assembler with configuration options.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		title:    table.DefaultTitle,
		creator:  "bilanz",
		clock:    time.Now,
		compress: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble renders both artifacts into a two page PDF held in memory. The
// artifacts are only read.
func (a *Assembler) Assemble(ctx context.Context, t *table.Artifact, c *chart.Artifact) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble report: %w", err)
	}

	doc := &document{
		pdf: fpdf.New("L", "mm", "A4", ""),
		enc: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
	}
	now := a.clock()
	doc.pdf.SetCompression(a.compress)
	doc.pdf.SetCatalogSort(true)
	doc.pdf.SetTitle(a.title, true)
	doc.pdf.SetCreator(a.creator, true)
	doc.pdf.SetCreationDate(now)
	doc.pdf.SetModificationDate(now)
	doc.pdf.SetMargins(margin, margin, margin)
	doc.pdf.SetAutoPageBreak(false, margin)

	doc.tablePage(t)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble report: %w", err)
	}
	doc.chartPage(c)

	if doc.pdf.Err() {
		return nil, render.Wrap(artifactName, doc.pdf.Error(), "layout")
	}
	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, render.Wrap(artifactName, err, "output")
	}
	return buf.Bytes(), nil
}

type document struct {
	pdf *fpdf.Fpdf
	enc *encoding.Encoder
}

// text converts UTF-8 to the Windows-1252 encoding of the core fonts.
func (d *document) text(s string) string {
	out, err := d.enc.String(s)
	if err != nil {
		return s
	}
	return out
}

func (d *document) usable() (width, height float64) {
	w, h := d.pdf.GetPageSize()
	return w - 2*margin, h - 2*margin
}

func (d *document) heading(title string) {
	d.pdf.SetFont("Helvetica", "B", titleSize)
	d.pdf.SetTextColor(0, 0, 0)
	w, _ := d.usable()
	d.pdf.SetXY(margin, margin)
	d.pdf.CellFormat(w, 10, d.text(title), "", 1, "L", false, 0, "")
	d.pdf.Ln(4)
}

func (d *document) tablePage(t *table.Artifact) {
	d.pdf.AddPage()
	d.heading(t.Title)

	widths, size := d.columnWidths(t)
	d.pdf.SetDrawColor(160, 160, 160)

	d.pdf.SetFont("Helvetica", "B", size)
	d.pdf.SetFillColor(230, 230, 230)
	for i, h := range t.Header {
		d.pdf.CellFormat(widths[i], rowHeight, d.text(h), "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont("Helvetica", "", size)
	for _, row := range t.Rows {
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			d.pdf.CellFormat(widths[i], rowHeight, d.text(cell), "1", 0, align, false, 0, "")
		}
		d.pdf.Ln(-1)
	}
	if len(t.Rows) == 0 {
		w, _ := d.usable()
		d.pdf.SetFont("Helvetica", "I", size)
		d.pdf.CellFormat(w, rowHeight, d.text("keine Daten"), "", 1, "L", false, 0, "")
	}
}

// columnWidths sizes each column to its widest cell and shrinks the font
// when the table would not fit the page width.
func (d *document) columnWidths(t *table.Artifact) ([]float64, float64) {
	size := bodySize
	measure := func() ([]float64, float64) {
		widths := make([]float64, len(t.Header))
		var total float64
		for i, h := range t.Header {
			d.pdf.SetFont("Helvetica", "B", size)
			widths[i] = d.pdf.GetStringWidth(d.text(h))
			d.pdf.SetFont("Helvetica", "", size)
			for _, row := range t.Rows {
				widths[i] = math.Max(widths[i], d.pdf.GetStringWidth(d.text(row[i])))
			}
			widths[i] += 2 * cellPadding
			total += widths[i]
		}
		return widths, total
	}

	widths, total := measure()
	usable, _ := d.usable()
	if total > usable {
		size = math.Max(minBodySize, math.Floor(size*usable/total*10)/10)
		widths, total = measure()
	}
	if total > 0 && total != usable {
		// Stretch or squeeze proportionally so the table spans the page.
		scale := usable / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths, size
}

func (d *document) chartPage(c *chart.Artifact) {
	d.pdf.AddPage()
	d.heading(c.Title)

	usableW, usableH := d.usable()
	_, top := d.pdf.GetXY()
	n := float64(len(c.Panels))
	cellW := usableW / n
	cellH := usableH - (top - margin) - 2*rowHeight
	radius := math.Min(cellW, cellH) * 0.3

	for i, p := range c.Panels {
		cx := margin + cellW*(float64(i)+0.5)
		cy := top + rowHeight + cellH*0.45
		d.pdf.SetFont("Helvetica", "B", 12)
		d.pdf.SetTextColor(0, 0, 0)
		d.pdf.SetXY(margin+cellW*float64(i), top)
		d.pdf.CellFormat(cellW, rowHeight, d.text(p.Title), "", 0, "C", false, 0, "")
		d.pie(p, cx, cy, radius)
		d.legend(p, margin+cellW*float64(i), cy+radius*1.35+rowHeight, cellW)
	}
}

func (d *document) pie(p chart.Panel, cx, cy, r float64) {
	if p.Empty() {
		d.pdf.SetDrawColor(160, 160, 160)
		d.pdf.Circle(cx, cy, r, "D")
		d.pdf.SetFont("Helvetica", "I", 10)
		d.centered(cx, cy, "keine Daten")
		return
	}

	shares := p.Shares()
	start := pieStartDeg
	for i, s := range p.Slices {
		if s.Value == 0 {
			continue
		}
		sweep := shares[i] / 100 * 360
		red, green, blue := hexColor(s.Color)
		d.pdf.SetFillColor(red, green, blue)
		d.pdf.Polygon(sector(cx, cy, r, start, start+sweep), "F")

		mid := (start + sweep/2) * math.Pi / 180
		d.pdf.SetFont("Helvetica", "", 8)
		d.pdf.SetTextColor(255, 255, 255)
		d.centered(cx+0.6*r*math.Cos(mid), cy-0.6*r*math.Sin(mid), chart.FormatShare(shares[i]))
		d.pdf.SetFont("Helvetica", "", 9)
		d.pdf.SetTextColor(0, 0, 0)
		d.centered(cx+1.18*r*math.Cos(mid), cy-1.18*r*math.Sin(mid), s.Label)
		start += sweep
	}
}

// sector approximates a counter-clockwise arc from fromDeg to toDeg with a
// closed polygon through the centre.
func sector(cx, cy, r, fromDeg, toDeg float64) []fpdf.PointType {
	steps := int(math.Ceil((toDeg - fromDeg) / sectorStepDeg))
	if steps < 1 {
		steps = 1
	}
	pts := make([]fpdf.PointType, 0, steps+2)
	pts = append(pts, fpdf.PointType{X: cx, Y: cy})
	for i := 0; i <= steps; i++ {
		a := (fromDeg + (toDeg-fromDeg)*float64(i)/float64(steps)) * math.Pi / 180
		pts = append(pts, fpdf.PointType{X: cx + r*math.Cos(a), Y: cy - r*math.Sin(a)})
	}
	return pts
}

func (d *document) legend(p chart.Panel, x, y, width float64) {
	d.pdf.SetFont("Helvetica", "", 9)
	d.pdf.SetTextColor(0, 0, 0)
	slot := width / float64(len(p.Slices))
	for i, s := range p.Slices {
		red, green, blue := hexColor(s.Color)
		d.pdf.SetFillColor(red, green, blue)
		bx := x + slot*float64(i) + cellPadding
		d.pdf.Rect(bx, y, legendBox, legendBox, "F")
		d.pdf.SetXY(bx+legendBox+1, y)
		d.pdf.CellFormat(slot-legendBox-cellPadding-1, legendBox, d.text(s.Label), "", 0, "L", false, 0, "")
	}
}

func (d *document) centered(x, y float64, s string) {
	txt := d.text(s)
	w := d.pdf.GetStringWidth(txt)
	_, h := d.pdf.GetFontSize()
	d.pdf.Text(x-w/2, y+h/3, txt)
}

// hexColor parses #rrggbb. Anything else falls back to grey.
func hexColor(s string) (int, int, int) {
	if len(s) != 7 || s[0] != '#' {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
