package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	ex "pairs.service/extensions"
	m "pairs.service/models"
)

func Test_Catalog_LabelFallsBackToIdentifier(t *testing.T) {
	c := Default()

	ex.AssertAreEqual(t, "known label", "Bovespa", c.LabelOf("^BVSP"))
	ex.AssertAreEqual(t, "unknown label", "XYZ=F", c.LabelOf("XYZ=F"))
}

func Test_Catalog_MembersKeepCatalogOrder(t *testing.T) {
	c := Default()

	currencies := c.Members(m.CategoryCurrency)
	require.Equal(t, []string{"USDBRL=X", "USDMXN=X", "USDJPY=X", "USDEUR=X", "USDGBP=X", "USDCAD=X"}, currencies)
	require.Len(t, c.Members(m.CategoryIndex), 9)
	require.Len(t, c.Members(m.CategoryCommodity), 6)
	require.Equal(t, []string{"^TNX"}, c.Members(m.CategoryRate))
}

func Test_Catalog_PairLabelIsDependentVsExplanatory(t *testing.T) {
	c := Default()
	label := c.PairLabel(m.Pair{Explanatory: "^BVSP", Dependent: "USDBRL=X"})

	ex.AssertAreEqual(t, "pair label", "USD/BRL vs Bovespa", label)
}

func Test_Catalog_NewRejectsInvalidUniverse(t *testing.T) {
	base := []m.Instrument{
		{ID: "USDBRL=X", Category: m.CategoryCurrency},
		{ID: "^BVSP", Category: m.CategoryIndex},
		{ID: "^TNX", Category: m.CategoryRate},
	}

	_, err := New(base, "USDBRL=X", "^BVSP", "^TNX")
	require.NoError(t, err)

	_, err = New(append(base, m.Instrument{ID: "^BVSP", Category: m.CategoryIndex}), "USDBRL=X", "^BVSP", "^TNX")
	require.ErrorContains(t, err, "duplicate")

	_, err = New(append(base, m.Instrument{ID: " ", Label: "blank"}), "USDBRL=X", "^BVSP", "^TNX")
	require.ErrorContains(t, err, "required")

	_, err = New(base, "USDMXN=X", "^BVSP", "^TNX")
	require.ErrorContains(t, err, "base currency")

	_, err = New(base, "USDBRL=X", "^TNX", "^BVSP")
	require.ErrorContains(t, err, "flagship index")
}
