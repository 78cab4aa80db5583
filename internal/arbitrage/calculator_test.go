package arbitrage

import (
	"testing"

	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
)

func TestEvaluate_ThreeOutcome(t *testing.T) {
	c := New(DefaultOptions())
	m := models.Match{HomeTeam: "Team Alpha", AwayTeam: "Team Beta", Sport: "Football", OddsHome: 1.50, OddsDraw: 3.20, OddsAway: 4.10}

	ev := c.Evaluate(m)
	if ev.Market != ThreeOutcome {
		t.Fatalf("Market = %s, want %s", ev.Market, ThreeOutcome)
	}
	if ev.MinOdds != 1.50 {
		t.Errorf("MinOdds = %v, want 1.5", ev.MinOdds)
	}
	if ev.GuaranteedProfit != 50 {
		t.Errorf("GuaranteedProfit = %v, want 50", ev.GuaranteedProfit)
	}
	if ev.ConversionRate != 16.7 {
		t.Errorf("ConversionRate = %v, want 16.7", ev.ConversionRate)
	}
	if ev.BestProfit != 310 {
		t.Errorf("BestProfit = %v, want 310", ev.BestProfit)
	}
	if ev.TotalStaked != 300 {
		t.Errorf("TotalStaked = %v, want 300", ev.TotalStaked)
	}
}

func TestEvaluate_TwoOutcome(t *testing.T) {
	c := New(DefaultOptions())
	m := models.Match{HomeTeam: "Player One", AwayTeam: "Player Two", Sport: "Tennis", OddsHome: 1.80, OddsDraw: models.NoDrawOdds, OddsAway: 2.05}

	ev := c.Evaluate(m)
	if ev.Market != TwoOutcome {
		t.Fatalf("Market = %s, want %s", ev.Market, TwoOutcome)
	}
	if ev.GuaranteedProfit != 80 {
		t.Errorf("GuaranteedProfit = %v, want 80", ev.GuaranteedProfit)
	}
	if ev.ConversionRate != 40 {
		t.Errorf("ConversionRate = %v, want 40", ev.ConversionRate)
	}
	if len(ev.Assignment) != 2 {
		t.Fatalf("Assignment has %d stakes, want 2", len(ev.Assignment))
	}
	if ev.Assignment[0].Outcome != "2" || ev.Assignment[0].ProfitIfWins != 105 {
		t.Errorf("Assignment[0] = %+v, want away outcome winning 105", ev.Assignment[0])
	}
}

func TestAssignment_SortedByPriceDescending(t *testing.T) {
	c := New(DefaultOptions())
	inputs := [][3]float64{
		{1.50, 3.20, 4.10},
		{4.10, 3.20, 1.50},
		{3.20, 4.10, 1.50},
		{2.00, 2.00, 2.00},
	}
	for _, in := range inputs {
		ev := c.Evaluate(models.Match{HomeTeam: "Home", AwayTeam: "Away", OddsHome: in[0], OddsDraw: in[1], OddsAway: in[2]})
		for i := 1; i < len(ev.Assignment); i++ {
			if ev.Assignment[i-1].Price < ev.Assignment[i].Price {
				t.Errorf("prices %v: assignment not descending: %+v", in, ev.Assignment)
			}
			if ev.Assignment[i].Backer != i+1 {
				t.Errorf("prices %v: backer %d at position %d", in, ev.Assignment[i].Backer, i)
			}
		}
	}

	tied := c.Evaluate(models.Match{HomeTeam: "Home", AwayTeam: "Away", OddsHome: 2, OddsDraw: 2, OddsAway: 2})
	if tied.Assignment[0].Outcome != "1" || tied.Assignment[1].Outcome != "N" || tied.Assignment[2].Outcome != "2" {
		t.Errorf("tied prices should keep 1, N, 2 order: %+v", tied.Assignment)
	}
}

func TestMarketType(t *testing.T) {
	c := New(DefaultOptions())
	tests := []struct {
		name  string
		match models.Match
		want  MarketType
	}{
		{"football with real draw", models.Match{Sport: "Football", OddsDraw: 3.2}, ThreeOutcome},
		{"basketball with draw price", models.Match{Sport: "Basketball", OddsDraw: 15}, TwoOutcome},
		{"competition label fallback", models.Match{Competition: "NBA Basket", OddsDraw: 12}, TwoOutcome},
		{"sentinel draw", models.Match{Sport: "Football", OddsDraw: models.NoDrawOdds}, TwoOutcome},
		{"draw above band", models.Match{Sport: "Football", OddsDraw: 60}, TwoOutcome},
		{"draw at band edge", models.Match{Sport: "Hockey", OddsDraw: 1.05}, ThreeOutcome},
		{"volleyball", models.Match{Sport: "Volleyball", OddsDraw: 5}, TwoOutcome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.MarketType(tt.match); got != tt.want {
				t.Errorf("MarketType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvaluate_TwoOutcomeIgnoresDrawPrice(t *testing.T) {
	c := New(DefaultOptions())
	m := models.Match{HomeTeam: "Lakers", AwayTeam: "Celtics", Sport: "Basketball", OddsHome: 1.90, OddsDraw: 1.02, OddsAway: 1.95}
	ev := c.Evaluate(m)
	if ev.MinOdds != 1.90 || ev.GuaranteedProfit != 90 || ev.ConversionRate != 45 {
		t.Errorf("Evaluate() = %+v", ev)
	}
}

func TestMarketType_SentinelOutsideWideBand(t *testing.T) {
	opts := DefaultOptions()
	opts.DrawBand = Band{Min: 1, Max: 100}
	c := New(opts)
	m := models.Match{Sport: "Football", OddsHome: 2.1, OddsDraw: models.NoDrawOdds, OddsAway: 1.7}
	if got := c.MarketType(m); got != TwoOutcome {
		t.Errorf("MarketType() = %s, want %s for the no-draw sentinel", got, TwoOutcome)
	}
}

func TestEvaluate_DrawOutsideBandUsesHomeAndAway(t *testing.T) {
	c := New(DefaultOptions())
	m := models.Match{HomeTeam: "Paris SG", AwayTeam: "Lorient", Sport: "Football", OddsHome: 1.05, OddsDraw: 60, OddsAway: 70}
	ev := c.Evaluate(m)
	if ev.Market != TwoOutcome {
		t.Fatalf("Market = %s, want %s", ev.Market, TwoOutcome)
	}
	if ev.MinOdds != 1.05 || ev.MaxOdds != 70 || len(ev.Assignment) != 2 {
		t.Errorf("Evaluate() = %+v, want min 1.05, max 70, two stakes", ev)
	}
}
