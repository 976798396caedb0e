// Package textwidth measures how many terminal columns text occupies, using
// the Unicode East-Asian width property of each scalar.
package textwidth

import (
	"golang.org/x/text/width"
)

// Rune returns the display width of r: 2 for wide and fullwidth scalars,
// 1 for everything else (neutral, narrow, halfwidth and ambiguous).
func Rune(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// String returns the summed display width of every scalar in s.
func String(s string) int {
	n := 0
	for _, r := range s {
		n += Rune(r)
	}
	return n
}

// Truncate returns the longest prefix of s whose display width is at most max.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	used := 0
	for i, r := range s {
		w := Rune(r)
		if used+w > max {
			return s[:i]
		}
		used += w
	}
	return s
}
