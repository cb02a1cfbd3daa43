package catalog

import m "pairs.service/models"

const (
	DefaultBaseCurrency  = "USDBRL=X"
	DefaultFlagshipIndex = "^BVSP"
	DefaultRateProxy     = "^TNX"
)

// identifiers are yahoo finance symbols
var defaultInstruments = []m.Instrument{
	// currencies
	{ID: "USDBRL=X", Category: m.CategoryCurrency, Label: "USD/BRL"},
	{ID: "USDMXN=X", Category: m.CategoryCurrency, Label: "USD/MXN"},
	{ID: "USDJPY=X", Category: m.CategoryCurrency, Label: "USD/JPY"},
	{ID: "USDEUR=X", Category: m.CategoryCurrency, Label: "USD/EUR"},
	{ID: "USDGBP=X", Category: m.CategoryCurrency, Label: "USD/GBP"},
	{ID: "USDCAD=X", Category: m.CategoryCurrency, Label: "USD/CAD"},

	// indices
	{ID: "^BVSP", Category: m.CategoryIndex, Label: "Bovespa"},
	{ID: "^GSPC", Category: m.CategoryIndex, Label: "S&P 500"},
	{ID: "^STOXX50E", Category: m.CategoryIndex, Label: "Euro Stoxx 50"},
	{ID: "^N225", Category: m.CategoryIndex, Label: "Nikkei 225"},
	{ID: "^GDAXI", Category: m.CategoryIndex, Label: "DAX"},
	{ID: "^FTSE", Category: m.CategoryIndex, Label: "FTSE 100"},
	{ID: "^HSI", Category: m.CategoryIndex, Label: "Hang Seng Index"},
	{ID: "^AORD", Category: m.CategoryIndex, Label: "ASX 200"},
	{ID: "^MXX", Category: m.CategoryIndex, Label: "IPC Mexico"},

	// commodities
	{ID: "GC=F", Category: m.CategoryCommodity, Label: "Gold"},
	{ID: "CL=F", Category: m.CategoryCommodity, Label: "WTI Crude"},
	{ID: "SI=F", Category: m.CategoryCommodity, Label: "Silver"},
	{ID: "HG=F", Category: m.CategoryCommodity, Label: "Copper"},
	{ID: "ZC=F", Category: m.CategoryCommodity, Label: "Corn"},
	{ID: "TIO=F", Category: m.CategoryCommodity, Label: "Iron Ore"},

	{ID: "^TNX", Category: m.CategoryRate, Label: "Treasury 10Y"},

	// single stocks, labeled for reference, not paired by the default rules
	{ID: "VALE3.SA", Category: m.CategoryEquity, Label: "Vale S.A."},
	{ID: "PETR4.SA", Category: m.CategoryEquity, Label: "Petrobras (PN)"},
	{ID: "ITUB4.SA", Category: m.CategoryEquity, Label: "Itau Unibanco (PN)"},
	{ID: "BBDC4.SA", Category: m.CategoryEquity, Label: "Bradesco (PN)"},
	{ID: "ABEV3.SA", Category: m.CategoryEquity, Label: "Ambev (ON)"},
	{ID: "WEGE3.SA", Category: m.CategoryEquity, Label: "Weg (ON)"},
	{ID: "SMAL11.SA", Category: m.CategoryEquity, Label: "Small Cap Index"},
}

// Default is the built-in universe.
func Default() *Catalog {
	c, err := New(defaultInstruments, DefaultBaseCurrency, DefaultFlagshipIndex, DefaultRateProxy)
	if err != nil {
		panic(err)
	}
	return c
}
