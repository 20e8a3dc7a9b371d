// Package testhelper contains helpers shared by the package tests.
package testhelper

import (
	"regexp"
	"strings"
	"testing"
)

var (
	whiteSpaces = regexp.MustCompile(`^(\s+)`)
	leadingTabs = regexp.MustCompile(`^(\t+)`)
)

// TrimIndent removes the indentation of the second line from every line of a
// raw string literal and drops the first (empty) line. Remaining leading tabs
// become four spaces each.
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")
	if len(lines) < 2 {
		return src
	}

	indent := whiteSpaces.FindString(lines[1])

	for i, line := range lines {
		line = strings.TrimPrefix(line, indent)
		lines[i] = leadingTabs.ReplaceAllStringFunc(line, func(match string) string {
			return strings.Repeat("    ", len(match))
		})
	}

	return strings.Join(lines[1:], "\n")
}
