package util

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldCase maps s to its Unicode case-folded form for case-insensitive
// comparison and uniqueness keys.
func FoldCase(s string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(s))
}
