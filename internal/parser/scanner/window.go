package scanner

import (
	"unicode/utf8"

	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
)

// Options bound the window scan.
type Options struct {
	WindowSize    int // tokens inspected from each anchor, anchor included
	MinTokens     int // anchors with fewer tokens left are not tried
	MaxNameLength int
	IDNameLength  int
}

func DefaultOptions() Options {
	return Options{WindowSize: 10, MinTokens: 4, MaxNameLength: 40, IDNameLength: 10}
}

// Labels carries the page context stamped on every emitted match.
type Labels struct {
	Source      string
	Bookmaker   string
	Competition string
	Sport       string
	URL         string
}

type Scanner struct {
	classifier *Classifier
	opts       Options
}

func New(classifier *Classifier, opts Options) *Scanner {
	def := DefaultOptions()
	if opts.WindowSize <= 0 {
		opts.WindowSize = def.WindowSize
	}
	if opts.MinTokens <= 0 {
		opts.MinTokens = def.MinTokens
	}
	if opts.MaxNameLength <= 0 {
		opts.MaxNameLength = def.MaxNameLength
	}
	if opts.IDNameLength <= 0 {
		opts.IDNameLength = def.IDNameLength
	}
	return &Scanner{classifier: classifier, opts: opts}
}

// scanResult is the outcome of trying one anchor. next is only set when matched.
type scanResult struct {
	matched bool
	match   models.Match
	next    int
}

var noMatch = scanResult{}

// Scan walks the token stream and returns the matches it could recover, in
// order of appearance, with duplicates of the same fixture removed.
func (s *Scanner) Scan(tokens []string, labels Labels) []models.Match {
	toks := s.classifier.ClassifyAll(tokens)
	set := NewMatchSet()

	for i := 0; len(toks)-i >= s.opts.MinTokens; {
		if toks[i].Kind != KindName {
			i++
			continue
		}
		res := s.tryAnchor(toks, i, labels)
		if !res.matched {
			i++
			continue
		}
		set.Add(res.match)
		i = res.next
	}
	return set.Matches()
}

func (s *Scanner) tryAnchor(toks []Token, anchor int, labels Labels) scanResult {
	end := anchor + s.opts.WindowSize
	if end > len(toks) {
		end = len(toks)
	}
	var prices []int
	for j := anchor; j < end; j++ {
		if toks[j].Kind == KindPrice {
			prices = append(prices, j)
		}
	}

	switch {
	case len(prices) >= 3 && hasDrawBetween(toks, prices[0], prices[2]):
		return s.threeOutcome(toks, anchor, prices[:3], labels)
	case len(prices) >= 2:
		return s.twoOutcome(toks, anchor, prices[:2], labels)
	}
	return noMatch
}

func hasDrawBetween(toks []Token, from, to int) bool {
	for j := from; j <= to; j++ {
		if toks[j].Kind == KindDraw {
			return true
		}
	}
	return false
}

// threeOutcome reads "home, p1, draw, p2, away, p3" shaped runs.
func (s *Scanner) threeOutcome(toks []Token, anchor int, prices []int, labels Labels) scanResult {
	homeIdx, awayIdx := prices[0]-1, prices[2]-1
	if homeIdx < anchor || awayIdx <= prices[0] {
		return noMatch
	}
	m, ok := s.build(toks[homeIdx], toks[awayIdx], labels)
	if !ok {
		return noMatch
	}
	m.OddsHome = toks[prices[0]].Price
	m.OddsDraw = toks[prices[1]].Price
	m.OddsAway = toks[prices[2]].Price
	return scanResult{matched: true, match: m, next: prices[2] + 1}
}

// twoOutcome reads "home, p1, away, p2" shaped runs.
func (s *Scanner) twoOutcome(toks []Token, anchor int, prices []int, labels Labels) scanResult {
	homeIdx, awayIdx := prices[0]-1, prices[1]-1
	if homeIdx < anchor || awayIdx <= prices[0] {
		return noMatch
	}
	m, ok := s.build(toks[homeIdx], toks[awayIdx], labels)
	if !ok {
		return noMatch
	}
	m.OddsHome = toks[prices[0]].Price
	m.OddsDraw = models.NoDrawOdds
	m.OddsAway = toks[prices[1]].Price
	return scanResult{matched: true, match: m, next: prices[1] + 1}
}

// build validates the two participant tokens and creates the match shell.
func (s *Scanner) build(home, away Token, labels Labels) (models.Match, bool) {
	if home.Kind != KindName || away.Kind != KindName {
		return models.Match{}, false
	}
	homeName := models.TruncateName(home.Text, s.opts.MaxNameLength)
	awayName := models.TruncateName(away.Text, s.opts.MaxNameLength)
	if homeName == awayName || utf8.RuneCountInString(homeName) <= 2 || utf8.RuneCountInString(awayName) <= 2 {
		return models.Match{}, false
	}
	return models.Match{
		ID:          models.MatchIdentity(labels.Source, homeName, awayName, s.opts.IDNameLength),
		Competition: labels.Competition,
		Sport:       labels.Sport,
		HomeTeam:    homeName,
		AwayTeam:    awayName,
		Bookmaker:   labels.Bookmaker,
		URL:         labels.URL,
	}, true
}
