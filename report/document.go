// Package report renders the pair ranking, the portfolio z-scores and the asset variations
// as paginated PDF documents.
package report

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	m "pairs.service/models"
)

// A4 landscape
var (
	pageWidth  = 297 * vg.Millimeter
	pageHeight = 210 * vg.Millimeter
	pageMargin = 12 * vg.Millimeter
)

var (
	colorTitle   = color.Black
	colorLowFit  = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	colorFooter  = color.Gray{Y: 0x70}
	colorCellTxt = color.Black
)

type Options struct {
	Band            float64 // half width of the shaded band, in standard deviations
	LowFitThreshold float64 // R² below this is drawn as a low fit
	Footer          string

	// OnPage is called with the 1 based number and the title of every page started
	OnPage func(number int, title string)
}

// document is a multi page pdf held in memory until every page is drawn.
type document struct {
	canvas *vgpdf.Canvas
	pages  int
	opts   Options
}

func newDocument(opts Options) *document {
	return &document{canvas: vgpdf.New(pageWidth, pageHeight), opts: opts}
}

// page starts a new page and stamps the footer on it.
func (d *document) page(title string) draw.Canvas {
	if d.pages > 0 {
		d.canvas.NextPage()
	}
	d.pages++
	if d.opts.OnPage != nil {
		d.opts.OnPage(d.pages, title)
	}

	dc := draw.New(d.canvas)
	drawFooter(dc, d.opts.Footer)
	return dc
}

// writeTo encodes the whole document first so w never receives a partial pdf.
func (d *document) writeTo(w io.Writer) (int, error) {
	var buf bytes.Buffer
	if _, err := d.canvas.WriteTo(&buf); err != nil {
		return 0, fmt.Errorf("error encoding pdf: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return 0, fmt.Errorf("error writing document: %w", err)
	}
	return d.pages, nil
}

// Assembler lays out the highlights grid followed by one residual page per regression.
type Assembler struct {
	opts    Options
	labelOf func(id string) string
}

func NewAssembler(opts Options, labelOf func(id string) string) *Assembler {
	return &Assembler{opts: opts, labelOf: labelOf}
}

// Render writes the grid, then the residual pages in the order of results, and returns
// the page count. w receives bytes only once every page rendered.
func (a *Assembler) Render(w io.Writer, table m.RankingTable, results []*m.RegressionResult) (int, error) {
	doc := newDocument(a.opts)

	a.drawHighlights(doc.page(highlightsTitle(table)), table)

	for _, r := range results {
		if err := a.drawResiduals(doc.page(a.pairTitle(r)), r); err != nil {
			return 0, fmt.Errorf("error drawing residual page for %s: %w", r.Pair, err)
		}
	}

	return doc.writeTo(w)
}

func drawFooter(dc draw.Canvas, footer string) {
	if footer == "" {
		return
	}
	sty := textStyle(colorFooter, 8)
	sty.XAlign = text.XRight
	sty.YAlign = text.YBottom
	dc.FillText(sty, vg.Point{X: dc.Max.X - pageMargin, Y: dc.Min.Y + pageMargin/2}, footer)
}

// drawHeading writes the page title and any subtitle lines, returning the y below them.
func drawHeading(dc draw.Canvas, title string, titleColor color.Color, subtitles ...string) vg.Length {
	y := dc.Max.Y - pageMargin

	sty := textStyle(titleColor, 16)
	sty.YAlign = text.YTop
	dc.FillText(sty, vg.Point{X: dc.Center().X, Y: y}, title)
	y -= sty.Height(title) + 2*vg.Millimeter

	sub := textStyle(colorTitle, 10)
	sub.YAlign = text.YTop
	for _, s := range subtitles {
		dc.FillText(sub, vg.Point{X: dc.Center().X, Y: y}, s)
		y -= sub.Height(s) + vg.Millimeter
	}

	return y - 2*vg.Millimeter
}

// drawPlot places p below the heading.
func drawPlot(dc draw.Canvas, top vg.Length, p *plot.Plot) {
	area := dc
	area.Max.Y = top
	p.Draw(draw.Crop(area, pageMargin, -pageMargin, pageMargin, 0))
}

func textStyle(c color.Color, size vg.Length) text.Style {
	return text.Style{
		Color:   c,
		Font:    font.From(plot.DefaultFont, size),
		XAlign:  text.XCenter,
		YAlign:  text.YCenter,
		Handler: plot.DefaultTextHandler,
	}
}
