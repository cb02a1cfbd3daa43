package report

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "pairs.service/models"
)

func sampleResult(explanatory, dependent string, rSquared float64, n int) *m.RegressionResult {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	r := &m.RegressionResult{
		Pair:         m.Pair{Explanatory: explanatory, Dependent: dependent},
		RSquared:     rSquared,
		Observations: n,
		Dates:        make([]time.Time, n),
		Standardized: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		r.Dates[i] = start.AddDate(0, 0, i)
		r.Standardized[i] = math.Sin(float64(i) / 5)
	}
	r.FirstDate, r.LastDate = r.Dates[0], r.Dates[n-1]
	return r
}

func sampleTable(results []*m.RegressionResult) m.RankingTable {
	entries := make([]m.RankingEntry, len(results))
	for i, r := range results {
		entries[i] = m.RankingEntry{Index: i, Pair: r.Pair, Label: r.Pair.Dependent + " vs " + r.Pair.Explanatory, Residual: float64(i) - 1}
	}
	return m.RankingTable{Entries: entries, Top: entries[len(entries)-1:], Bottom: entries[:1]}
}

func newTestAssembler() *Assembler {
	return NewAssembler(Options{Band: 1.5, LowFitThreshold: 0.1, Footer: "Desk"}, func(id string) string { return id })
}

func Test_Report_RenderWritesOnePagePerResultPlusGrid(t *testing.T) {
	results := []*m.RegressionResult{
		sampleResult("^BVSP", "^GSPC", 0.62, 40),
		sampleResult("^TNX", "^GSPC", 0.04, 40),
		sampleResult("GC=F", "SI=F", 0.81, 40),
	}

	var buf bytes.Buffer
	pages, err := newTestAssembler().Render(&buf, sampleTable(results), results)
	require.NoError(t, err)

	assert.Equal(t, 1+len(results), pages)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "document should be a pdf")
}

func Test_Report_RenderFlatResiduals(t *testing.T) {
	r := sampleResult("A", "B", 1, 10)
	for i := range r.Standardized {
		r.Standardized[i] = 0
	}

	var buf bytes.Buffer
	pages, err := newTestAssembler().Render(&buf, sampleTable([]*m.RegressionResult{r}), []*m.RegressionResult{r})
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.NotZero(t, buf.Len())
}

func Test_Report_PagesFollowGenerationOrderNotRank(t *testing.T) {
	results := []*m.RegressionResult{
		sampleResult("^BVSP", "^GSPC", 0.62, 40),
		sampleResult("^TNX", "^GSPC", 0.04, 40),
		sampleResult("GC=F", "SI=F", 0.81, 40),
	}
	// ranked descending the last result comes first
	table := m.RankingTable{
		Entries: []m.RankingEntry{
			{Index: 2, Pair: results[2].Pair, Label: "SI=F vs GC=F", Residual: 2.5},
			{Index: 0, Pair: results[0].Pair, Label: "^GSPC vs ^BVSP", Residual: 0.3},
			{Index: 1, Pair: results[1].Pair, Label: "^GSPC vs ^TNX", Residual: -1.2},
		},
	}
	table.Top, table.Bottom = table.Entries[:1], table.Entries[2:]

	var numbers []int
	var titles []string
	opts := Options{Band: 1.5, LowFitThreshold: 0.1, OnPage: func(number int, title string) {
		numbers = append(numbers, number)
		titles = append(titles, title)
	}}

	var buf bytes.Buffer
	pages, err := NewAssembler(opts, func(id string) string { return id }).Render(&buf, table, results)
	require.NoError(t, err)

	assert.Equal(t, 4, pages)
	assert.Equal(t, []int{1, 2, 3, 4}, numbers)
	assert.Equal(t, []string{
		"Daily highlights | 1 largest & 1 smallest residuals",
		"^GSPC vs ^BVSP",
		"^GSPC vs ^TNX",
		"SI=F vs GC=F",
	}, titles)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func Test_Report_RenderReportsWriterFailure(t *testing.T) {
	results := []*m.RegressionResult{sampleResult("A", "B", 0.5, 10)}
	_, err := newTestAssembler().Render(failingWriter{}, sampleTable(results), results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func Test_Report_ColorMapConvergesOnZeroAcrossSigns(t *testing.T) {
	cmap := cellColorMap([]m.RankingEntry{{Residual: -3}, {Residual: 1}})
	assert.Equal(t, 0.0, cmap.ConvergePoint())
}

func Test_Report_ColorMapConvergesOnMidpointForOneSign(t *testing.T) {
	cmap := cellColorMap([]m.RankingEntry{{Residual: 1}, {Residual: 3}})
	assert.Equal(t, 2.0, cmap.ConvergePoint())
}

func Test_Report_ColorMapWidensSingleValue(t *testing.T) {
	cmap := cellColorMap([]m.RankingEntry{{Residual: 0.5}})
	assert.Less(t, cmap.Min(), cmap.Max())
	assert.NotNil(t, cellColor(cmap, 0.5))
}

func Test_Report_LowFit(t *testing.T) {
	a := newTestAssembler()
	assert.True(t, a.lowFit(&m.RegressionResult{RSquared: 0.05}))
	assert.False(t, a.lowFit(&m.RegressionResult{RSquared: 0.1}))
}
