package models

import (
	"fmt"
	"strings"
)

// Category groups instruments for pair generation.
type Category uint8

const (
	CategoryCurrency Category = iota
	CategoryIndex
	CategoryCommodity
	CategoryRate
	CategoryEquity
)

func (c Category) Name() string {
	switch c {
	case CategoryCurrency:
		return "currency"
	case CategoryIndex:
		return "index"
	case CategoryCommodity:
		return "commodity"
	case CategoryRate:
		return "rate"
	case CategoryEquity:
		return "equity"
	default:
		return ""
	}
}

func (c Category) String() string {
	return c.Name()
}

// ParseCategory is the inverse of Name, case insensitive
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "currency":
		return CategoryCurrency, nil
	case "index":
		return CategoryIndex, nil
	case "commodity":
		return CategoryCommodity, nil
	case "rate":
		return CategoryRate, nil
	case "equity":
		return CategoryEquity, nil
	default:
		return 0, fmt.Errorf("unknown instrument category %q", s)
	}
}

type Instrument struct {
	ID       string
	Category Category
	Label    string
}

// Pair is regressed as Dependent ~ Explanatory, order matters.
type Pair struct {
	Explanatory string `json:"explanatory"`
	Dependent   string `json:"dependent"`
}

func (p Pair) String() string {
	return fmt.Sprintf("(%s, %s)", p.Explanatory, p.Dependent)
}
