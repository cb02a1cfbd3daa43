package catalog

import (
	"fmt"
	"strings"

	m "pairs.service/models"
)

// Catalog is an immutable lookup of the instrument universe, safe for concurrent reads.
type Catalog struct {
	instruments []m.Instrument
	lookup      map[string]int

	BaseCurrency  string
	FlagshipIndex string
	RateProxy     string
}

// New validates the instruments and the three reference identifiers.
func New(instruments []m.Instrument, baseCurrency, flagshipIndex, rateProxy string) (*Catalog, error) {
	c := &Catalog{
		instruments:   make([]m.Instrument, 0, len(instruments)),
		lookup:        make(map[string]int, len(instruments)),
		BaseCurrency:  baseCurrency,
		FlagshipIndex: flagshipIndex,
		RateProxy:     rateProxy,
	}

	for _, inst := range instruments {
		id := strings.TrimSpace(inst.ID)
		if id == "" {
			return nil, fmt.Errorf("instrument identifier is required (label %q)", inst.Label)
		}
		if _, ok := c.lookup[id]; ok {
			return nil, fmt.Errorf("duplicate instrument identifier %s", id)
		}
		inst.ID = id
		c.lookup[id] = len(c.instruments)
		c.instruments = append(c.instruments, inst)
	}

	references := []struct {
		name     string
		id       string
		category m.Category
	}{
		{"base currency", baseCurrency, m.CategoryCurrency},
		{"flagship index", flagshipIndex, m.CategoryIndex},
		{"rate proxy", rateProxy, m.CategoryRate},
	}
	for _, r := range references {
		inst, ok := c.Get(r.id)
		if !ok {
			return nil, fmt.Errorf("%s %q is not in the catalog", r.name, r.id)
		}
		if inst.Category != r.category {
			return nil, fmt.Errorf("%s %s must be a %s, got %s", r.name, r.id, r.category, inst.Category)
		}
	}

	return c, nil
}

func (c *Catalog) Get(id string) (m.Instrument, bool) {
	idx, ok := c.lookup[id]
	if !ok {
		return m.Instrument{}, false
	}
	return c.instruments[idx], true
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.lookup[id]
	return ok
}

// LabelOf falls back to the identifier itself for unknown instruments.
func (c *Catalog) LabelOf(id string) string {
	if inst, ok := c.Get(id); ok && inst.Label != "" {
		return inst.Label
	}
	return id
}

// Members returns the identifiers of a category in catalog order.
func (c *Catalog) Members(category m.Category) []string {
	var res []string
	for _, inst := range c.instruments {
		if inst.Category == category {
			res = append(res, inst.ID)
		}
	}
	return res
}

func (c *Catalog) Instruments() []m.Instrument {
	res := make([]m.Instrument, len(c.instruments))
	copy(res, c.instruments)
	return res
}

// PairLabel is "<dependent label> vs <explanatory label>".
func (c *Catalog) PairLabel(p m.Pair) string {
	return fmt.Sprintf("%s vs %s", c.LabelOf(p.Dependent), c.LabelOf(p.Explanatory))
}
