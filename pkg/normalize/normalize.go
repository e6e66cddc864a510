// Package normalize canonicalizes college names into merge keys.
//
// The same function must be used everywhere a key is computed (enrichment
// index, merge engine, query filters); an unnormalized name anywhere splits
// one institution into duplicates. Matching is exact on the normalized form:
// "IIT Delhi" and "Indian Institute of Technology Delhi" stay distinct.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key is the normalized identity of a college.
type Key string

// String returns the key as a plain string.
func (k Key) String() string {
	return string(k)
}

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool {
	return k == ""
}

// Name trims, collapses internal whitespace runs to a single space, and lowercases.
func Name(name string) Key {
	collapsed := strings.Join(strings.Fields(name), " ")
	if collapsed == "" {
		return ""
	}
	// Casers carry state and must not be shared across goroutines.
	return Key(cases.Lower(language.Und).String(collapsed))
}

// Equal compares two strings case-insensitively after whitespace cleanup.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Fold returns the case-folded, whitespace-collapsed form used for
// case-insensitive comparisons and sorting.
func Fold(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// Compare orders two display names case-insensitively.
func Compare(a, b string) int {
	return strings.Compare(Fold(a), Fold(b))
}
