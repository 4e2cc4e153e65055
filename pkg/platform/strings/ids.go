// Package strings provides identifier normalisation helpers.
package strings

import (
	"slices"
	"strings"
)

// NormaliseIDs trims and upper-cases every id, drops blanks and duplicates,
// and returns the result sorted. The input slice is not modified.
//
// Example:
//
//	NormaliseIDs([]string{" b2", "A1", "a1 ", ""})
//	// Returns: []string{"A1", "B2"}
func NormaliseIDs(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if id := strings.ToUpper(strings.TrimSpace(v)); id != "" {
			result = append(result, id)
		}
	}
	slices.Sort(result)
	return slices.Compact(result)
}
