package core

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"pairs.service/catalog"
	m "pairs.service/models"
)

var testEpoch = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

// fakeProvider serves canned series, attempts after the scripted ones serve everything.
type fakeProvider struct {
	mu     sync.Mutex
	series map[string]m.Series

	// per attempt tickers to withhold, and attempts that fail as a whole
	withhold map[int][]string
	outage   map[int]error

	calls [][]string
}

func (f *fakeProvider) FetchDailyCloses(ctx context.Context, tickers []string, start, end time.Time) (map[string]m.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	attempt := len(f.calls)
	f.calls = append(f.calls, slices.Clone(tickers))
	if err := f.outage[attempt]; err != nil {
		return nil, err
	}

	res := map[string]m.Series{}
	for _, t := range tickers {
		if slices.Contains(f.withhold[attempt], t) {
			continue
		}
		if s, ok := f.series[t]; ok {
			res[t] = s
		}
	}
	return res, nil
}

func closes(values ...float64) m.Series {
	res := make(m.Series, len(values))
	for i, v := range values {
		res[i] = m.Observation{Date: testEpoch.AddDate(0, 0, i), Close: null.FloatFrom(v)}
	}
	return res
}

// randomWalk is a deterministic synthetic close series.
func randomWalk(seed uint64, n int) m.Series {
	r := rand.New(rand.NewPCG(seed, 7))
	res := make(m.Series, n)
	v := 100.0
	for i := range res {
		v *= math.Exp(r.NormFloat64() * 0.01)
		res[i] = m.Observation{Date: testEpoch.AddDate(0, 0, i), Close: null.FloatFrom(v)}
	}
	return res
}

func frameOf(columns map[string]m.Series) *m.Frame {
	return buildFrame(columns)
}

func smallCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]m.Instrument{
		{ID: "USDBRL=X", Category: m.CategoryCurrency, Label: "USD/BRL"},
		{ID: "USDMXN=X", Category: m.CategoryCurrency, Label: "USD/MXN"},
		{ID: "^BVSP", Category: m.CategoryIndex, Label: "Bovespa"},
		{ID: "^GSPC", Category: m.CategoryIndex, Label: "S&P 500"},
		{ID: "GC=F", Category: m.CategoryCommodity, Label: "Gold"},
		{ID: "SI=F", Category: m.CategoryCommodity, Label: "Silver"},
		{ID: "^TNX", Category: m.CategoryRate, Label: "Treasury 10Y"},
	}, "USDBRL=X", "^BVSP", "^TNX")
	if err != nil {
		t.Fatalf("error building catalog: %v", err)
	}
	return cat
}

func fullProvider(cat *catalog.Catalog, n int) *fakeProvider {
	f := &fakeProvider{series: map[string]m.Series{}}
	for i, inst := range cat.Instruments() {
		f.series[inst.ID] = randomWalk(uint64(i+1), n)
	}
	return f
}

func newTestContext(t *testing.T, provider SeriesProvider) (*ServiceContext, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return &ServiceContext{
		Provider: provider,
		Catalog:  smallCatalog(t),
		Logger:   logger,
		Settings: DefaultSettings(),
		Now:      func() time.Time { return testEpoch.AddDate(1, 0, 0) },
	}, hook
}

func warnings(hook *test.Hook) (res []*logrus.Entry) {
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			res = append(res, e)
		}
	}
	return
}
