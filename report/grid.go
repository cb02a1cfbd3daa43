package report

import (
	"cmp"
	"fmt"
	"image/color"
	"slices"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	m "pairs.service/models"
)

const (
	gridColumns = 5
	cellAlpha   = 0.9
)

var (
	maxCellHeight = 22 * vg.Millimeter
	cellPadding   = 1.5 * vg.Millimeter
	cellBorder    = draw.LineStyle{Color: color.White, Width: vg.Points(1.5)}
)

func highlightsTitle(table m.RankingTable) string {
	return fmt.Sprintf("Daily highlights | %d largest & %d smallest residuals", len(table.Top), len(table.Bottom))
}

func (a *Assembler) drawHighlights(dc draw.Canvas, table m.RankingTable) {
	cells := slices.Clone(table.Extremes())
	slices.SortStableFunc(cells, func(x, y m.RankingEntry) int {
		return cmp.Compare(x.Residual, y.Residual)
	})

	top := drawHeading(dc, highlightsTitle(table), colorTitle)

	if len(cells) == 0 {
		return
	}

	cmap := cellColorMap(cells)

	rows := (len(cells) + gridColumns - 1) / gridColumns
	width := (dc.Max.X - dc.Min.X - 2*pageMargin) / gridColumns
	height := min((top-dc.Min.Y-2*pageMargin)/vg.Length(rows), maxCellHeight)

	for idx, cell := range cells {
		row, col := idx/gridColumns, idx%gridColumns
		x0 := dc.Min.X + pageMargin + vg.Length(col)*width
		y1 := top - vg.Length(row)*height
		rect := vg.Rectangle{
			Min: vg.Point{X: x0, Y: y1 - height},
			Max: vg.Point{X: x0 + width, Y: y1},
		}
		drawCell(dc, rect, cell, cellColor(cmap, cell.Residual))
	}
}

// cellColorMap spans the cell values, cells must be sorted ascending.
func cellColorMap(cells []m.RankingEntry) palette.DivergingColorMap {
	lo, hi := widen(cells[0].Residual, cells[len(cells)-1].Residual)

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(lo)
	cmap.SetMax(hi)
	cmap.SetAlpha(cellAlpha)
	cmap.SetConvergePoint(convergePoint(lo, hi)) // always within [lo, hi]
	return cmap
}

// widen opens a single valued range so color maps accept it.
func widen(lo, hi float64) (float64, float64) {
	if lo == hi {
		return lo - 1, hi + 1
	}
	return lo, hi
}

// convergePoint is zero when the range spans both signs, its midpoint otherwise.
func convergePoint(lo, hi float64) float64 {
	if lo < 0 && hi > 0 {
		return 0
	}
	return (lo + hi) / 2
}

func cellColor(cmap palette.DivergingColorMap, v float64) color.Color {
	c, err := cmap.At(v)
	if err != nil {
		return color.White
	}
	return c
}

func drawCell(dc draw.Canvas, rect vg.Rectangle, cell m.RankingEntry, fill color.Color) {
	corners := []vg.Point{
		rect.Min,
		{X: rect.Max.X, Y: rect.Min.Y},
		rect.Max,
		{X: rect.Min.X, Y: rect.Max.Y},
	}
	dc.FillPolygon(fill, corners)
	dc.StrokeLines(cellBorder, append(corners, rect.Min))

	cx := (rect.Min.X + rect.Max.X) / 2
	h := rect.Max.Y - rect.Min.Y

	label := fitText(textStyle(colorCellTxt, 8), cell.Label, rect.Max.X-rect.Min.X-2*cellPadding)
	dc.FillText(label, vg.Point{X: cx, Y: rect.Min.Y + h*0.65}, cell.Label)

	value := textStyle(colorCellTxt, 11)
	dc.FillText(value, vg.Point{X: cx, Y: rect.Min.Y + h*0.3}, fmt.Sprintf("%.2f", cell.Residual))
}

// fitText shrinks the font until txt fits the width, down to 5pt.
func fitText(sty text.Style, txt string, width vg.Length) text.Style {
	for sty.Width(txt) > width && sty.Font.Size > vg.Points(5) {
		sty.Font.Size -= vg.Points(0.5)
	}
	return sty
}
