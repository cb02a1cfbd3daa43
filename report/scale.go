package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/palette/brewer"
)

const paletteSteps = 11

// redToGreen colors values on the discrete RdYlGn scale, the lowest value red.
// When centered, the yellow midpoint sits on zero if the values span both signs.
func redToGreen(values []float64, centered bool) ([]color.Color, error) {
	p, err := brewer.GetPalette(brewer.TypeAny, "RdYlGn", paletteSteps)
	if err != nil {
		return nil, fmt.Errorf("error loading palette: %w", err)
	}
	steps := p.Colors()

	res := make([]color.Color, len(values))
	if len(values) == 0 {
		return res, nil
	}

	lo, hi := widen(floats.Min(values), floats.Max(values))
	center := (lo + hi) / 2
	if centered {
		center = convergePoint(lo, hi)
	}
	for i, v := range values {
		t := twoSlope(v, lo, center, hi)
		res[i] = steps[int(math.Round(t*float64(len(steps)-1)))]
	}
	return res, nil
}

// twoSlope maps [lo, center] onto [0, 0.5] and [center, hi] onto [0.5, 1].
func twoSlope(v, lo, center, hi float64) float64 {
	switch {
	case v <= lo:
		return 0
	case v >= hi:
		return 1
	case v < center:
		return 0.5 * (v - lo) / (center - lo)
	default:
		return 0.5 + 0.5*(v-center)/(hi-center)
	}
}
