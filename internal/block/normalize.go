package block

import (
	"regexp"
	"strings"
)

var newlineRun = regexp.MustCompile(`\n{2,}`)

// Normalize strips surrounding whitespace and collapses every run of two or
// more newlines into one. Whitespace inside a line is kept.
func Normalize(s string) string {
	return newlineRun.ReplaceAllString(strings.TrimSpace(s), "\n")
}
