package models

import "time"

// NoDrawOdds marks a two-outcome match in OddsDraw. It is never a payable price.
const NoDrawOdds = 1.0

// Match is one event recovered from a bookmaker page with its 1X2 (or 1-2) prices.
type Match struct {
	ID          string  `json:"id"`
	Competition string  `json:"competition"`
	Sport       string  `json:"sport"`
	HomeTeam    string  `json:"home_team"`
	AwayTeam    string  `json:"away_team"`
	OddsHome    float64 `json:"odds_home"`
	OddsDraw    float64 `json:"odds_draw"`
	OddsAway    float64 `json:"odds_away"`
	Bookmaker   string  `json:"bookmaker"`
	URL         string  `json:"url,omitempty"`
}

// HasDraw reports whether the match was extracted with a real draw price. It
// says nothing about the market type, which arbitrage.Calculator decides.
func (m Match) HasDraw() bool {
	return m.OddsDraw != NoDrawOdds
}

// WithSport returns a copy carrying the sport label of the page it was found on.
func (m Match) WithSport(sport string) Match {
	m.Sport = sport
	return m
}

// ScrapeStatus is the outcome of one fetch cycle for one source.
type ScrapeStatus string

const (
	StatusSuccess ScrapeStatus = "success"
	StatusPartial ScrapeStatus = "partial"
	StatusError   ScrapeStatus = "error"
)

// ScrapeResult is the finalized output of one scrape pass over a source.
type ScrapeResult struct {
	RunID           string       `json:"run_id"`
	Source          string       `json:"source"`
	Bookmaker       string       `json:"bookmaker"`
	Matches         []Match      `json:"matches"`
	Status          ScrapeStatus `json:"status"`
	Message         string       `json:"message"`
	StartedAt       time.Time    `json:"started_at"`
	DurationSeconds float64      `json:"duration_seconds"`
}

func (r ScrapeResult) Count() int {
	return len(r.Matches)
}
