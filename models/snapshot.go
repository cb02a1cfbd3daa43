package models

import "time"

type ZScoreEntry struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	ZScore float64 `json:"zScore"`
}

// Portfolio is the z-score of every usable member's latest close against the trailing window.
type Portfolio struct {
	Name     string
	Category Category
	Window   int
	AsOf     time.Time
	Entries  []ZScoreEntry // ascending by z-score
}

// VariationEntry holds percent changes of the latest close, Changes follows the class horizons.
type VariationEntry struct {
	ID         string
	Label      string
	YearToDate float64
	Changes    []float64
}

type VariationClass struct {
	Name     string
	Category Category
	Horizons []int            // business days
	Entries  []VariationEntry // ascending by YearToDate
}
