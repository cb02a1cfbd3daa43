package extensions

import (
	"fmt"
	"time"
)

// FilterMultiple return all elements that satisfy the predicate
func FilterMultiple[T any](elements []T, predicate func(T) bool) (results []T) {
	for _, element := range elements {
		if predicate(element) {
			results = append(results, element)
		}
	}
	return
}

// FilterSingle return the single element that satisfies the predicate.
// If zero or more than one, default T and an error is returned.
func FilterSingle[T any](elements []T, predicate func(T) bool) (T, error) {
	res := FilterMultiple(elements, predicate)

	if len(res) != 1 {
		var zero T
		return zero, fmt.Errorf("error getting single, found %d matches", len(res))
	}

	return res[0], nil
}

// Distinct keeps the first occurrence of every element, preserving order
func Distinct[T comparable](elements []T) []T {
	seen := make(map[T]struct{}, len(elements))
	res := make([]T, 0, len(elements))
	for _, element := range elements {
		if _, ok := seen[element]; ok {
			continue
		}
		seen[element] = struct{}{}
		res = append(res, element)
	}
	return res
}

// ToSet builds a lookup set from a slice
func ToSet[T comparable](elements []T) map[T]struct{} {
	res := make(map[T]struct{}, len(elements))
	for _, element := range elements {
		res[element] = struct{}{}
	}
	return res
}

// FmtShort formats a time in a date only string
func FmtShort(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DateOnly keeps the calendar date of t (in its own location) as midnight UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
