package models

import (
	"sort"
	"strings"
)

// MatchIdentity builds the per-source match id "<source>_<a>_<b>" where a and b
// are the normalized participant names, sorted and cut to nameLen runes.
// Swapping home and away yields the same id.
func MatchIdentity(source, homeTeam, awayTeam string, nameLen int) string {
	names := []string{normalizeKeyPart(homeTeam), normalizeKeyPart(awayTeam)}
	sort.Strings(names)
	return source + "_" + truncateRunes(names[0], nameLen) + "_" + truncateRunes(names[1], nameLen)
}

// normalizeKeyPart lower-cases, trims and turns "Last, First" into "first last".
func normalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if parts := strings.Split(s, ","); len(parts) == 2 {
		s = strings.TrimSpace(parts[1]) + " " + strings.TrimSpace(parts[0])
	}
	s = strings.ReplaceAll(s, ",", "")
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// TruncateName cuts a display name to n runes and trims the cut edge.
func TruncateName(s string, n int) string {
	return strings.TrimSpace(truncateRunes(strings.TrimSpace(s), n))
}
