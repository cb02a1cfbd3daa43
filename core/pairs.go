package core

import (
	"pairs.service/catalog"
	ex "pairs.service/extensions"
	m "pairs.service/models"
)

// PairRules are the inputs of pair generation, buckets in catalog order.
type PairRules struct {
	Currencies  []string
	Indices     []string
	Commodities []string

	BaseCurrency  string
	FlagshipIndex string
	RateProxy     string
}

func RulesFromCatalog(cat *catalog.Catalog) PairRules {
	return PairRules{
		Currencies:    cat.Members(m.CategoryCurrency),
		Indices:       cat.Members(m.CategoryIndex),
		Commodities:   cat.Members(m.CategoryCommodity),
		BaseCurrency:  cat.BaseCurrency,
		FlagshipIndex: cat.FlagshipIndex,
		RateProxy:     cat.RateProxy,
	}
}

// GeneratePairs emits (explanatory, dependent) pairs rule by rule. Self pairs are never
// emitted, duplicates produced by different rules are kept.
func GeneratePairs(r PairRules) []m.Pair {
	var pairs []m.Pair
	add := func(explanatory, dependent string) {
		if explanatory == dependent {
			return
		}
		pairs = append(pairs, m.Pair{Explanatory: explanatory, Dependent: dependent})
	}

	// each currency against the base currency
	for _, c := range r.Currencies {
		add(c, r.BaseCurrency)
	}

	// flagship index against every other index
	for _, i := range r.Indices {
		add(r.FlagshipIndex, i)
	}

	// rate proxy against indices, then currencies
	for _, i := range r.Indices {
		add(r.RateProxy, i)
	}
	for _, c := range r.Currencies {
		add(r.RateProxy, c)
	}

	// commodity combinations, i < j
	for i := 0; i < len(r.Commodities); i++ {
		for j := i + 1; j < len(r.Commodities); j++ {
			add(r.Commodities[i], r.Commodities[j])
		}
	}

	for _, c := range r.Commodities {
		add(r.FlagshipIndex, c)
	}

	add(r.FlagshipIndex, r.BaseCurrency)

	return pairs
}

// Universe is the distinct set of legs in first appearance order.
func Universe(pairs []m.Pair) []string {
	legs := make([]string, 0, 2*len(pairs))
	for _, p := range pairs {
		legs = append(legs, p.Explanatory, p.Dependent)
	}
	return ex.Distinct(legs)
}
