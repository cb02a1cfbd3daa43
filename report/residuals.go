package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	ex "pairs.service/extensions"
	m "pairs.service/models"
)

const (
	bandAlpha = 0x4c // 0.3
	yPadding  = 0.5
)

var (
	colorResidual = color.RGBA{R: 0x1f, G: 0x4e, B: 0xd8, A: 0xff}
	colorZero     = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	colorBandFit  = color.NRGBA{R: 0x90, G: 0xee, B: 0x90, A: bandAlpha} // lightgreen
	colorBandLow  = color.NRGBA{R: 0xf0, G: 0x80, B: 0x80, A: bandAlpha} // lightcoral
)

func (a *Assembler) lowFit(r *m.RegressionResult) bool {
	return r.RSquared < a.opts.LowFitThreshold
}

func (a *Assembler) pairTitle(r *m.RegressionResult) string {
	return fmt.Sprintf("%s vs %s", a.labelOf(r.Pair.Dependent), a.labelOf(r.Pair.Explanatory))
}

func (a *Assembler) drawResiduals(dc draw.Canvas, r *m.RegressionResult) error {
	dependent, explanatory := a.labelOf(r.Pair.Dependent), a.labelOf(r.Pair.Explanatory)

	titleColor, band := color.Color(colorTitle), colorBandFit
	if a.lowFit(r) {
		titleColor, band = colorLowFit, colorBandLow
	}

	top := drawHeading(dc,
		a.pairTitle(r),
		titleColor,
		fmt.Sprintf("Residual of %s explained by %s", dependent, explanatory),
		fmt.Sprintf("R² = %.4f, Sample = %d days, Last Date = %s", r.RSquared, r.Observations, ex.FmtShort(r.LastDate)),
	)

	p, err := a.residualPlot(r, band)
	if err != nil {
		return err
	}

	drawPlot(dc, top, p)
	return nil
}

func (a *Assembler) residualPlot(r *m.RegressionResult, band color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2006"}
	p.Y.Label.Text = "Standardized residual"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	first, last := float64(r.FirstDate.Unix()), float64(r.LastDate.Unix())

	shade, err := plotter.NewPolygon(plotter.XYs{
		{X: first, Y: -a.opts.Band},
		{X: last, Y: -a.opts.Band},
		{X: last, Y: a.opts.Band},
		{X: first, Y: a.opts.Band},
	})
	if err != nil {
		return nil, fmt.Errorf("error building band: %w", err)
	}
	shade.Color = band
	shade.LineStyle.Width = 0

	zero, err := plotter.NewLine(plotter.XYs{{X: first, Y: 0}, {X: last, Y: 0}})
	if err != nil {
		return nil, fmt.Errorf("error building zero line: %w", err)
	}
	zero.LineStyle.Color = colorZero
	zero.LineStyle.Width = vg.Points(1)
	zero.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}

	points := make(plotter.XYs, len(r.Dates))
	for i, d := range r.Dates {
		points[i].X = float64(d.Unix())
		points[i].Y = r.Standardized[i]
	}
	residuals, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("error building residual line: %w", err)
	}
	residuals.LineStyle.Color = colorResidual
	residuals.LineStyle.Width = vg.Points(1.5)

	p.Add(shade, zero, residuals)
	p.Legend.Add("Standardized residual", residuals)
	p.Legend.Add(fmt.Sprintf("±%.1f band", a.opts.Band), shade)
	p.Legend.Add("Zero", zero)

	p.X.Min, p.X.Max = first, last
	p.Y.Min = floats.Min(r.Standardized) - yPadding
	p.Y.Max = floats.Max(r.Standardized) + yPadding

	return p, nil
}
