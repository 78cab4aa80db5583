// Package arbitrage computes guaranteed-profit figures and stake assignments
// for a match when one stake unit is placed on every outcome.
package arbitrage

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
)

type MarketType string

const (
	TwoOutcome   MarketType = "two_outcome"
	ThreeOutcome MarketType = "three_outcome"
)

// Band is an inclusive price range.
type Band struct {
	Min float64
	Max float64
}

func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

type Options struct {
	StakeUnit        float64
	ProfitPrecision  int32
	RatePrecision    int32
	TwoOutcomeSports []string
	DrawBand         Band
}

func DefaultOptions() Options {
	return Options{
		StakeUnit:        100,
		ProfitPrecision:  0,
		RatePrecision:    1,
		TwoOutcomeSports: []string{"basketball", "tennis", "basket", "volley", "mma", "boxe"},
		DrawBand:         Band{Min: 1.05, Max: 50},
	}
}

// Stake is one backer's bet in the assignment.
type Stake struct {
	Backer       int     `json:"backer"`
	Outcome      string  `json:"outcome"`
	Label        string  `json:"label"`
	Price        float64 `json:"price"`
	ProfitIfWins float64 `json:"profit_if_wins"`
}

// Evaluation holds the derived figures for one match.
type Evaluation struct {
	Market           MarketType `json:"market"`
	MinOdds          float64    `json:"min_odds"`
	MaxOdds          float64    `json:"max_odds"`
	TotalStaked      float64    `json:"total_staked"`
	GuaranteedProfit float64    `json:"guaranteed_profit"`
	BestProfit       float64    `json:"best_profit"`
	ConversionRate   float64    `json:"conversion_rate"`
	Assignment       []Stake    `json:"assignment"`
}

type Calculator struct {
	opts   Options
	sports []string
}

func New(opts Options) *Calculator {
	if opts.StakeUnit <= 0 {
		opts.StakeUnit = DefaultOptions().StakeUnit
	}
	sports := make([]string, 0, len(opts.TwoOutcomeSports))
	for _, s := range opts.TwoOutcomeSports {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			sports = append(sports, s)
		}
	}
	return &Calculator{opts: opts, sports: sports}
}

// MarketType classifies a match after extraction. A match is two-outcome when
// its sport (or competition, if the sport is unknown) names a sport without
// draws, when it was extracted without a draw price, or when its draw price
// falls outside the draw band. The band check will misfile a real three-way
// market whose draw is priced outside the band.
func (c *Calculator) MarketType(m models.Match) MarketType {
	label := m.Sport
	if label == "" {
		label = m.Competition
	}
	label = strings.ToLower(label)
	for _, s := range c.sports {
		if strings.Contains(label, s) {
			return TwoOutcome
		}
	}
	if !m.HasDraw() || !c.opts.DrawBand.Contains(m.OddsDraw) {
		return TwoOutcome
	}
	return ThreeOutcome
}

type outcome struct {
	key   string
	label string
	price float64
}

func (c *Calculator) outcomes(m models.Match, market MarketType) []outcome {
	home := outcome{key: "1", label: "1 - " + m.HomeTeam, price: m.OddsHome}
	away := outcome{key: "2", label: "2 - " + m.AwayTeam, price: m.OddsAway}
	if market == TwoOutcome {
		return []outcome{home, away}
	}
	return []outcome{home, {key: "N", label: "N - Match nul", price: m.OddsDraw}, away}
}

// Evaluate computes profit figures and the per-backer assignment for m.
func (c *Calculator) Evaluate(m models.Match) Evaluation {
	market := c.MarketType(m)
	outs := c.outcomes(m, market)
	unit := decimal.NewFromFloat(c.opts.StakeUnit)
	one := decimal.NewFromInt(1)

	minOdds, maxOdds := outs[0].price, outs[0].price
	for _, o := range outs[1:] {
		if o.price < minOdds {
			minOdds = o.price
		}
		if o.price > maxOdds {
			maxOdds = o.price
		}
	}

	total := unit.Mul(decimal.NewFromInt(int64(len(outs))))
	profit := decimal.NewFromFloat(minOdds).Sub(one).Mul(unit)
	best := decimal.NewFromFloat(maxOdds).Sub(one).Mul(unit)
	rate := profit.Div(total).Mul(decimal.NewFromInt(100))

	return Evaluation{
		Market:           market,
		MinOdds:          minOdds,
		MaxOdds:          maxOdds,
		TotalStaked:      total.InexactFloat64(),
		GuaranteedProfit: profit.Round(c.opts.ProfitPrecision).InexactFloat64(),
		BestProfit:       best.Round(c.opts.ProfitPrecision).InexactFloat64(),
		ConversionRate:   rate.Round(c.opts.RatePrecision).InexactFloat64(),
		Assignment:       c.assign(outs, unit),
	}
}

// assign gives one outcome to each backer, highest price first. Ties keep
// home, draw, away order.
func (c *Calculator) assign(outs []outcome, unit decimal.Decimal) []Stake {
	sorted := make([]outcome, len(outs))
	copy(sorted, outs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].price > sorted[j].price
	})

	one := decimal.NewFromInt(1)
	stakes := make([]Stake, len(sorted))
	for i, o := range sorted {
		stakes[i] = Stake{
			Backer:       i + 1,
			Outcome:      o.key,
			Label:        o.label,
			Price:        o.price,
			ProfitIfWins: decimal.NewFromFloat(o.price).Sub(one).Mul(unit).Round(2).InexactFloat64(),
		}
	}
	return stakes
}
