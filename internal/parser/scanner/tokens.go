// Package scanner recovers match records from the unordered token stream of a
// rendered bookmaker page.
//
// The pipeline is Tokenize -> Classify -> window scan -> validate -> emit. Every
// stage works on immutable slices so each heuristic can be tested without a
// browser.
package scanner

import "strings"

// Tokenize splits raw page text into trimmed, non-empty lines, keeping order.
func Tokenize(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	tokens := make([]string, 0, len(lines))
	for _, line := range lines {
		if t := strings.TrimSpace(line); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
