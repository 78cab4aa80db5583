package scanner

import "github.com/Antoine-pa/paris-sportifs/internal/pkg/models"

// MatchSet accumulates matches for one scrape pass. The first sighting of an
// id wins; later sightings are dropped without merging their odds.
type MatchSet struct {
	seen    map[string]struct{}
	matches []models.Match
}

func NewMatchSet() *MatchSet {
	return &MatchSet{seen: make(map[string]struct{})}
}

// Add appends m unless its id is already present and reports whether it did.
func (s *MatchSet) Add(m models.Match) bool {
	if _, dup := s.seen[m.ID]; dup {
		return false
	}
	s.seen[m.ID] = struct{}{}
	s.matches = append(s.matches, m)
	return true
}

// AddAll adds every match in order and returns how many were new.
func (s *MatchSet) AddAll(ms []models.Match) int {
	added := 0
	for _, m := range ms {
		if s.Add(m) {
			added++
		}
	}
	return added
}

func (s *MatchSet) Len() int {
	return len(s.matches)
}

// Matches returns a copy of the accumulated matches in insertion order.
func (s *MatchSet) Matches() []models.Match {
	out := make([]models.Match, len(s.matches))
	copy(out, s.matches)
	return out
}
