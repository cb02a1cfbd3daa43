package report

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	ex "pairs.service/extensions"
	m "pairs.service/models"
)

const (
	barWidth    = 0.8
	labelOffset = 0.01 // of the largest absolute z-score
)

const currencyAxis = "Z-score | > 0 currency depreciation, < 0 currency appreciation"

func zScoreTitle(p m.Portfolio) string {
	return fmt.Sprintf("Z-score | %s on %s", p.Name, ex.FmtShort(p.AsOf))
}

// RenderZScores writes one bar chart page per portfolio and returns the page count.
func RenderZScores(w io.Writer, opts Options, portfolios []m.Portfolio) (int, error) {
	doc := newDocument(opts)
	for _, p := range portfolios {
		title := zScoreTitle(p)
		dc := doc.page(title)
		top := drawHeading(dc, title, colorTitle, fmt.Sprintf("Last %d days", p.Window))

		pl, err := zScorePlot(p)
		if err != nil {
			return 0, fmt.Errorf("error drawing z-score page for %s: %w", p.Name, err)
		}
		drawPlot(dc, top, pl)
	}
	return doc.writeTo(w)
}

func zScorePlot(p m.Portfolio) (*plot.Plot, error) {
	if len(p.Entries) == 0 {
		return nil, fmt.Errorf("portfolio %s has no assets", p.Name)
	}

	values := make([]float64, len(p.Entries))
	names := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		values[i], names[i] = e.ZScore, e.Label
	}
	colors, err := redToGreen(values, true)
	if err != nil {
		return nil, err
	}

	pl := plot.New()
	pl.X.Label.Text = "Assets"
	pl.Y.Label.Text = "Z-score"
	if p.Category == m.CategoryCurrency {
		pl.Y.Label.Text = currencyAxis
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
	pl.Add(grid)

	for i, v := range values {
		x := float64(i)
		bar, err := plotter.NewPolygon(plotter.XYs{
			{X: x - barWidth/2, Y: 0},
			{X: x + barWidth/2, Y: 0},
			{X: x + barWidth/2, Y: v},
			{X: x - barWidth/2, Y: v},
		})
		if err != nil {
			return nil, fmt.Errorf("error building bar: %w", err)
		}
		bar.Color = colors[i]
		bar.LineStyle.Width = 0
		pl.Add(bar)
	}

	labels, err := barLabels(values)
	if err != nil {
		return nil, err
	}
	pl.Add(labels)

	pl.NominalX(names...)
	pl.X.Tick.Label.Rotation = math.Pi / 4
	pl.X.Tick.Label.XAlign = text.XRight
	pl.X.Tick.Label.YAlign = text.YCenter
	pl.X.Min, pl.X.Max = -barWidth, float64(len(values)-1)+barWidth

	return pl, nil
}

// barLabels prints each value just above a positive bar or just below a negative one.
func barLabels(values []float64) (*plotter.Labels, error) {
	offset := labelOffset * math.Max(math.Abs(floats.Min(values)), math.Abs(floats.Max(values)))

	points := plotter.XYLabels{XYs: make(plotter.XYs, len(values)), Labels: make([]string, len(values))}
	for i, v := range values {
		points.XYs[i] = plotter.XY{X: float64(i), Y: v + offset}
		if v < 0 {
			points.XYs[i].Y = v - offset
		}
		points.Labels[i] = fmt.Sprintf("%.2f", v)
	}

	labels, err := plotter.NewLabels(points)
	if err != nil {
		return nil, fmt.Errorf("error building bar labels: %w", err)
	}
	for i, v := range values {
		sty := textStyle(colorCellTxt, 9)
		sty.YAlign = text.YBottom
		if v < 0 {
			sty.YAlign = text.YTop
		}
		labels.TextStyle[i] = sty
	}
	return labels, nil
}
