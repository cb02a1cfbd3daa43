package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	m "pairs.service/models"
)

var glyphRadius = vg.Points(6)

// period is one scatter page of a class, value picks the plotted change of an entry.
type period struct {
	name  string
	value func(m.VariationEntry) float64
}

func periods(horizons []int) []period {
	res := make([]period, 0, len(horizons)+1)
	for i, h := range horizons {
		res = append(res, period{
			name:  fmt.Sprintf("%d days", h),
			value: func(e m.VariationEntry) float64 { return e.Changes[i] },
		})
	}
	return append(res, period{name: "YTD", value: func(e m.VariationEntry) float64 { return e.YearToDate }})
}

func variationTitle(class m.VariationClass, p period) string {
	return fmt.Sprintf("%s | Variation (%s) | sorted by YTD return", class.Name, p.name)
}

// RenderVariations writes, per class, one scatter page per horizon then the YTD page.
func RenderVariations(w io.Writer, opts Options, classes []m.VariationClass) (int, error) {
	doc := newDocument(opts)
	for _, class := range classes {
		for _, p := range periods(class.Horizons) {
			title := variationTitle(class, p)
			dc := doc.page(title)
			top := drawHeading(dc, title, colorTitle)

			pl, err := variationPlot(class, p)
			if err != nil {
				return 0, fmt.Errorf("error drawing %s page for %s: %w", p.name, class.Name, err)
			}
			drawPlot(dc, top, pl)
		}
	}
	return doc.writeTo(w)
}

func variationPlot(class m.VariationClass, p period) (*plot.Plot, error) {
	n := len(class.Entries)
	if n == 0 {
		return nil, fmt.Errorf("class %s has no assets", class.Name)
	}

	values := make([]float64, n)
	points := plotter.XYLabels{XYs: make(plotter.XYs, n), Labels: make([]string, n)}
	for i, e := range class.Entries {
		values[i] = p.value(e)
		points.XYs[i] = plotter.XY{X: float64(i), Y: values[i]}
		points.Labels[i] = e.Label
	}
	colors, err := redToGreen(values, false)
	if err != nil {
		return nil, err
	}

	pl := plot.New()
	pl.X.Label.Text = fmt.Sprintf("%s sorted by YTD return", class.Name)
	pl.Y.Label.Text = fmt.Sprintf("Variation (%%) | %s", p.name)
	pl.X.Tick.Marker = plot.ConstantTicks{}
	pl.X.Min, pl.X.Max = -0.5, float64(n)-0.5

	zero, err := plotter.NewLine(plotter.XYs{{X: pl.X.Min, Y: 0}, {X: pl.X.Max, Y: 0}})
	if err != nil {
		return nil, fmt.Errorf("error building zero line: %w", err)
	}
	zero.LineStyle.Color = color.Black
	zero.LineStyle.Width = vg.Points(0.5)
	zero.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	scatter, err := plotter.NewScatter(points.XYs)
	if err != nil {
		return nil, fmt.Errorf("error building scatter: %w", err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: colors[i], Radius: glyphRadius, Shape: draw.CircleGlyph{}}
	}

	labels, err := plotter.NewLabels(points)
	if err != nil {
		return nil, fmt.Errorf("error building asset labels: %w", err)
	}
	for i := range labels.TextStyle {
		sty := textStyle(colorCellTxt, 8)
		sty.YAlign = text.YBottom
		labels.TextStyle[i] = sty
	}
	labels.Offset = vg.Point{Y: glyphRadius + vg.Points(4)}

	pl.Add(zero, scatter, labels)
	return pl, nil
}
