package models

import (
	"slices"
	"time"

	"github.com/guregu/null/v6"
)

// Observation is one daily close, Close is invalid when the provider returned no value.
type Observation struct {
	Date  time.Time
	Close null.Float
}

type Series []Observation

// Normalize sorts by date and keeps the last valid observation for a repeated date.
func (s Series) Normalize() Series {
	res := slices.Clone(s)
	slices.SortStableFunc(res, func(a, b Observation) int {
		return a.Date.Compare(b.Date)
	})

	out := res[:0]
	for _, o := range res {
		if n := len(out); n > 0 && out[n-1].Date.Equal(o.Date) {
			if o.Close.Valid || !out[n-1].Close.Valid {
				out[n-1] = o
			}
			continue
		}
		out = append(out, o)
	}
	return out
}

// ValidCount is the number of observations carrying a close.
func (s Series) ValidCount() (n int) {
	for _, o := range s {
		if o.Close.Valid {
			n++
		}
	}
	return
}

// Frame holds one close column per ticker over a shared, strictly increasing date index.
type Frame struct {
	Dates   []time.Time
	Columns map[string][]null.Float
}

func NewFrame() *Frame {
	return &Frame{Columns: map[string][]null.Float{}}
}

func (f *Frame) Has(ticker string) bool {
	if f == nil {
		return false
	}
	_, ok := f.Columns[ticker]
	return ok
}

// Tickers returns the column keys sorted.
func (f *Frame) Tickers() []string {
	if f == nil {
		return nil
	}
	res := make([]string, 0, len(f.Columns))
	for k := range f.Columns {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Dates)
}

// AlignedPair is the inner join of two columns, every row carries both values.
type AlignedPair struct {
	Dates       []time.Time
	Explanatory []float64
	Dependent   []float64
}

func (a AlignedPair) Len() int {
	return len(a.Dates)
}
