// Package assembler turns a scrape result into the presentation payload:
// matches split by market type, ranked by conversion rate and truncated.
package assembler

import (
	"math"
	"sort"
	"time"

	"github.com/Antoine-pa/paris-sportifs/internal/arbitrage"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
)

// MatchView is a match with its arbitrage figures.
type MatchView struct {
	models.Match
	arbitrage.Evaluation
}

type MarketMatches struct {
	TwoOutcome   []MatchView `json:"two_outcome"`
	ThreeOutcome []MatchView `json:"three_outcome"`
}

// Counts are taken before truncation.
type Counts struct {
	TwoOutcome   int `json:"two_outcome"`
	ThreeOutcome int `json:"three_outcome"`
	Total        int `json:"total"`
}

// Payload is what a caller gets back for one source.
type Payload struct {
	RunID               string              `json:"run_id"`
	Source              string              `json:"source"`
	Bookmaker           string              `json:"bookmaker"`
	Status              models.ScrapeStatus `json:"status"`
	Message             string              `json:"message"`
	StartedAt           time.Time           `json:"started_at"`
	DurationSeconds     float64             `json:"duration_seconds"`
	FromCache           bool                `json:"from_cache"`
	MatchesByMarketType MarketMatches       `json:"matches_by_market_type"`
	Counts              Counts              `json:"counts"`
}

type Assembler struct {
	calc  *arbitrage.Calculator
	limit int
}

// New returns an assembler keeping at most limit matches per market; limit <= 0
// keeps everything.
func New(calc *arbitrage.Calculator, limit int) *Assembler {
	return &Assembler{calc: calc, limit: limit}
}

func (a *Assembler) Assemble(res models.ScrapeResult) Payload {
	two := make([]MatchView, 0)
	three := make([]MatchView, 0)
	for _, m := range res.Matches {
		view := MatchView{Match: m, Evaluation: a.calc.Evaluate(m)}
		if view.Market == arbitrage.TwoOutcome {
			two = append(two, view)
		} else {
			three = append(three, view)
		}
	}

	counts := Counts{TwoOutcome: len(two), ThreeOutcome: len(three), Total: len(two) + len(three)}
	return Payload{
		RunID:           res.RunID,
		Source:          res.Source,
		Bookmaker:       res.Bookmaker,
		Status:          res.Status,
		Message:         res.Message,
		StartedAt:       res.StartedAt,
		DurationSeconds: math.Round(res.DurationSeconds*10) / 10,
		MatchesByMarketType: MarketMatches{
			TwoOutcome:   a.rank(two),
			ThreeOutcome: a.rank(three),
		},
		Counts: counts,
	}
}

// rank sorts by conversion rate, best first, and truncates. Equal rates keep
// extraction order.
func (a *Assembler) rank(views []MatchView) []MatchView {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].ConversionRate > views[j].ConversionRate
	})
	if a.limit > 0 && len(views) > a.limit {
		views = views[:a.limit]
	}
	return views
}

// Best returns the highest conversion rate match across both markets.
func (p Payload) Best() (MatchView, bool) {
	var best MatchView
	found := false
	for _, list := range [][]MatchView{p.MatchesByMarketType.ThreeOutcome, p.MatchesByMarketType.TwoOutcome} {
		if len(list) > 0 && (!found || list[0].ConversionRate > best.ConversionRate) {
			best, found = list[0], true
		}
	}
	return best, found
}
