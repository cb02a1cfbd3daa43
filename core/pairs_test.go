package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairs.service/catalog"
	ex "pairs.service/extensions"
	m "pairs.service/models"
)

func Test_Pairs_DefaultUniverse(t *testing.T) {
	cat := catalog.Default()
	pairs := GeneratePairs(RulesFromCatalog(cat))

	ex.AssertAreEqual(t, "pair count", 50, len(pairs))
	assert.Equal(t, m.Pair{Explanatory: "USDMXN=X", Dependent: "USDBRL=X"}, pairs[0])
	assert.Equal(t, m.Pair{Explanatory: "^BVSP", Dependent: "USDBRL=X"}, pairs[len(pairs)-1])

	for _, p := range pairs {
		assert.NotEqual(t, p.Explanatory, p.Dependent, "self pair %s", p)
		assert.True(t, cat.Has(p.Explanatory), "unknown explanatory leg in %s", p)
		assert.True(t, cat.Has(p.Dependent), "unknown dependent leg in %s", p)
	}
}

func Test_Pairs_RuleOrder(t *testing.T) {
	pairs := GeneratePairs(PairRules{
		Currencies:    []string{"BASE", "C1"},
		Indices:       []string{"FLAG", "I1"},
		Commodities:   []string{"K1", "K2", "K3"},
		BaseCurrency:  "BASE",
		FlagshipIndex: "FLAG",
		RateProxy:     "RATE",
	})

	expected := []m.Pair{
		{Explanatory: "C1", Dependent: "BASE"},
		{Explanatory: "FLAG", Dependent: "I1"},
		{Explanatory: "RATE", Dependent: "FLAG"},
		{Explanatory: "RATE", Dependent: "I1"},
		{Explanatory: "RATE", Dependent: "BASE"},
		{Explanatory: "RATE", Dependent: "C1"},
		{Explanatory: "K1", Dependent: "K2"},
		{Explanatory: "K1", Dependent: "K3"},
		{Explanatory: "K2", Dependent: "K3"},
		{Explanatory: "FLAG", Dependent: "K1"},
		{Explanatory: "FLAG", Dependent: "K2"},
		{Explanatory: "FLAG", Dependent: "K3"},
		{Explanatory: "FLAG", Dependent: "BASE"},
	}
	require.Equal(t, expected, pairs)
}

func Test_Pairs_DuplicatesAreKept(t *testing.T) {
	pairs := GeneratePairs(PairRules{
		Currencies:    []string{"C1", "C1"},
		BaseCurrency:  "BASE",
		FlagshipIndex: "FLAG",
		RateProxy:     "RATE",
	})

	count := 0
	for _, p := range pairs {
		if p == (m.Pair{Explanatory: "C1", Dependent: "BASE"}) {
			count++
		}
	}
	ex.AssertAreEqual(t, "duplicate count", 2, count)
}

func Test_Pairs_UniverseIsDistinctInOrder(t *testing.T) {
	universe := Universe([]m.Pair{
		{Explanatory: "A", Dependent: "B"},
		{Explanatory: "C", Dependent: "A"},
		{Explanatory: "B", Dependent: "D"},
	})
	assert.Equal(t, []string{"A", "B", "C", "D"}, universe)
}
