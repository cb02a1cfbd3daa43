package core

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	m "pairs.service/models"
)

// residual deviations at or below this share of the dependent scale count as a perfect fit
const flatResidualTolerance = 1e-9

// Align inner joins the two columns and keeps the most recent window rows.
// window <= 0 keeps every row.
func Align(frame *m.Frame, explanatory, dependent string, window int) (m.AlignedPair, error) {
	var res m.AlignedPair

	xs, okX := frame.Columns[explanatory]
	ys, okY := frame.Columns[dependent]
	if !okX || !okY {
		return res, fmt.Errorf("%w: missing column for (%s, %s)", ErrInsufficientData, explanatory, dependent)
	}

	// frame dates are strictly increasing, so rows come out sorted
	for i, d := range frame.Dates {
		if !xs[i].Valid || !ys[i].Valid {
			continue
		}
		res.Dates = append(res.Dates, d)
		res.Explanatory = append(res.Explanatory, xs[i].Float64)
		res.Dependent = append(res.Dependent, ys[i].Float64)
	}

	if res.Len() < 2 {
		return res, fmt.Errorf("%w: %d rows for (%s, %s)", ErrInsufficientData, res.Len(), explanatory, dependent)
	}

	if window > 0 && res.Len() > window {
		cut := res.Len() - window
		res.Dates = res.Dates[cut:]
		res.Explanatory = res.Explanatory[cut:]
		res.Dependent = res.Dependent[cut:]
	}

	return res, nil
}

// Regress fits dependent = slope * explanatory + intercept over the aligned window
// and standardizes the residuals with the population deviation.
func Regress(frame *m.Frame, pair m.Pair, window int) (*m.RegressionResult, error) {
	aligned, err := Align(frame, pair.Explanatory, pair.Dependent, window)
	if err != nil {
		return nil, err
	}

	x, y := aligned.Explanatory, aligned.Dependent
	if floats.Max(x) == floats.Min(x) {
		return nil, fmt.Errorf("%w: %s", ErrDegenerateVariance, pair.Explanatory)
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)

	rSquared := 0.0
	if floats.Max(y) != floats.Min(y) {
		rSquared = stat.RSquared(x, y, nil, intercept, slope)
	}

	residuals := make([]float64, len(y))
	for i := range y {
		residuals[i] = y[i] - (slope*x[i] + intercept)
	}

	return &m.RegressionResult{
		Pair:         pair,
		Slope:        slope,
		Intercept:    intercept,
		RSquared:     rSquared,
		Dates:        aligned.Dates,
		Residuals:    residuals,
		Standardized: standardize(residuals, dependentScale(y)),
		Observations: aligned.Len(),
		FirstDate:    aligned.Dates[0],
		LastDate:     aligned.Dates[aligned.Len()-1],
	}, nil
}

func standardize(residuals []float64, scale float64) []float64 {
	res := make([]float64, len(residuals))

	mean, std := stat.PopMeanStdDev(residuals, nil)
	if std <= flatResidualTolerance*scale {
		return res
	}

	for i, r := range residuals {
		res[i] = (r - mean) / std
	}
	return res
}

func dependentScale(y []float64) float64 {
	return math.Max(1, math.Max(math.Abs(floats.Max(y)), math.Abs(floats.Min(y))))
}

// regressAll regresses every pair in order, skipping pairs that cannot be fitted.
func regressAll(frame *m.Frame, pairs []m.Pair, window int, onSkip func(m.Pair, error)) []*m.RegressionResult {
	results := make([]*m.RegressionResult, 0, len(pairs))
	for _, p := range pairs {
		r, err := Regress(frame, p, window)
		if err != nil {
			onSkip(p, err)
			continue
		}
		results = append(results, r)
	}
	return results
}

// lastDate across all results, zero when empty.
func lastDate(results []*m.RegressionResult) (t time.Time) {
	for _, r := range results {
		if r.LastDate.After(t) {
			t = r.LastDate
		}
	}
	return
}
