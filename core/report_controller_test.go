package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairs.service/api"
	ex "pairs.service/extensions"
	m "pairs.service/models"
)

func Test_ReportController_GenerateWritesDocument(t *testing.T) {
	sc, _ := newTestContext(t, nil)
	sc.Provider = fullProvider(sc.Catalog, 120)

	var buf bytes.Buffer
	summary, err := sc.Generate(context.Background(), &buf)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 10, summary.Pairs)
	assert.Equal(t, 10, summary.Regressed)
	assert.Zero(t, summary.Skipped)
	assert.Empty(t, summary.FailedTicker)
	assert.Equal(t, 1+summary.Regressed, summary.Pages)
	assert.Len(t, summary.Extremes, 20)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func Test_ReportController_FailedTickerSkipsItsPairs(t *testing.T) {
	sc, hook := newTestContext(t, nil)
	provider := fullProvider(sc.Catalog, 60)
	delete(provider.series, "^TNX")
	sc.Provider = provider

	var buf bytes.Buffer
	summary, err := sc.Generate(context.Background(), &buf)
	require.NoError(t, err)

	// (^TNX, ^BVSP), (^TNX, ^GSPC), (^TNX, USDBRL=X), (^TNX, USDMXN=X)
	assert.Equal(t, 4, summary.Skipped)
	assert.Equal(t, 6, summary.Regressed)
	assert.Equal(t, []string{"^TNX"}, summary.FailedTicker)
	assert.Len(t, provider.calls, 2)

	skipped := 0
	for _, e := range warnings(hook) {
		if e.Message == "pair skipped, leg without data" {
			skipped++
		}
	}
	assert.Equal(t, 4, skipped)
}

func Test_ReportController_NoUsableSeriesWritesNothing(t *testing.T) {
	sc, _ := newTestContext(t, &fakeProvider{series: map[string]m.Series{}})

	var buf bytes.Buffer
	summary, err := sc.Generate(context.Background(), &buf)
	require.ErrorIs(t, err, ErrNoUsableSeries)
	ex.AssertNillability(t, "summary", true, summary)
	assert.Zero(t, buf.Len())
}

func Test_ReportController_ProviderOutageIsNoUsableSeries(t *testing.T) {
	sc, _ := newTestContext(t, &fakeProvider{outage: map[int]error{0: api.ErrProviderUnavailable, 1: api.ErrProviderUnavailable}})

	var buf bytes.Buffer
	_, err := sc.Generate(context.Background(), &buf)
	require.ErrorIs(t, err, ErrNoUsableSeries)
	require.ErrorIs(t, err, api.ErrProviderUnavailable)
	assert.Zero(t, buf.Len())
}

func Test_ReportController_NoRegressedPairs(t *testing.T) {
	// every series constant, so every pair has a degenerate explanatory leg
	provider := &fakeProvider{series: map[string]m.Series{}}
	sc, _ := newTestContext(t, provider)
	for _, inst := range sc.Catalog.Instruments() {
		provider.series[inst.ID] = closes(1, 1, 1, 1)
	}

	var buf bytes.Buffer
	_, err := sc.Generate(context.Background(), &buf)
	require.ErrorIs(t, err, ErrNoRegressedPairs)
	assert.Zero(t, buf.Len())
}

func Test_ReportController_GenerateToFile(t *testing.T) {
	sc, _ := newTestContext(t, nil)
	sc.Provider = fullProvider(sc.Catalog, 60)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")

	summary, err := sc.GenerateToFile(context.Background(), path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
	assert.Equal(t, 11, summary.Pages)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be renamed into place")
}

func Test_ReportController_GenerateToFileFailureLeavesNoFile(t *testing.T) {
	sc, _ := newTestContext(t, &fakeProvider{series: map[string]m.Series{}})

	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")

	_, err := sc.GenerateToFile(context.Background(), path)
	require.ErrorIs(t, err, ErrNoUsableSeries)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
