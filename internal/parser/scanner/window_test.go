package scanner

import (
	"testing"

	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
)

func newTestScanner() *Scanner {
	return New(NewClassifier([]string{"nul", "match nul", "n", "draw"}), DefaultOptions())
}

var testLabels = Labels{Source: "pmu", Bookmaker: "PMU Sport", Competition: "Football"}

func TestScan_ThreeOutcomeRoundTrip(t *testing.T) {
	tokens := []string{"Team Alpha", "1,50", "Match nul", "3,20", "Team Beta", "4,10", "Team Gamma", "2,10"}

	got := newTestScanner().Scan(tokens, testLabels)
	if len(got) != 1 {
		t.Fatalf("Scan() returned %d matches, want 1: %+v", len(got), got)
	}
	m := got[0]
	if m.HomeTeam != "Team Alpha" || m.AwayTeam != "Team Beta" {
		t.Errorf("teams = %q vs %q, want Team Alpha vs Team Beta", m.HomeTeam, m.AwayTeam)
	}
	if m.OddsHome != 1.50 || m.OddsDraw != 3.20 || m.OddsAway != 4.10 {
		t.Errorf("odds = %v/%v/%v, want 1.5/3.2/4.1", m.OddsHome, m.OddsDraw, m.OddsAway)
	}
	if m.ID != "pmu_team alpha_team beta" {
		t.Errorf("ID = %q", m.ID)
	}
	if m.Competition != "Football" || m.Bookmaker != "PMU Sport" {
		t.Errorf("labels not stamped: %+v", m)
	}
}

func TestScan_TwoOutcome(t *testing.T) {
	got := newTestScanner().Scan([]string{"Player One", "1,80", "Player Two", "2,05"}, testLabels)
	if len(got) != 1 {
		t.Fatalf("Scan() returned %d matches, want 1", len(got))
	}
	m := got[0]
	if m.OddsDraw != models.NoDrawOdds {
		t.Errorf("OddsDraw = %v, want sentinel %v", m.OddsDraw, models.NoDrawOdds)
	}
	if m.OddsHome != 1.80 || m.OddsAway != 2.05 {
		t.Errorf("odds = %v/%v, want 1.8/2.05", m.OddsHome, m.OddsAway)
	}
	if m.HomeTeam != "Player One" || m.AwayTeam != "Player Two" {
		t.Errorf("teams = %q vs %q", m.HomeTeam, m.AwayTeam)
	}
}

func TestScan_ExtraPricesWithoutDrawSplitIntoTwoOutcomeRuns(t *testing.T) {
	tokens := []string{"Player One", "1,80", "Player Two", "2,05", "Player Three", "1,50", "Player Four", "2,50"}

	got := newTestScanner().Scan(tokens, testLabels)
	if len(got) != 2 {
		t.Fatalf("Scan() returned %d matches, want 2: %+v", len(got), got)
	}
	want := []struct {
		home, away string
		oddsHome   float64
		oddsAway   float64
	}{
		{"Player One", "Player Two", 1.80, 2.05},
		{"Player Three", "Player Four", 1.50, 2.50},
	}
	for i, w := range want {
		m := got[i]
		if m.HomeTeam != w.home || m.AwayTeam != w.away {
			t.Errorf("match %d teams = %q vs %q, want %q vs %q", i, m.HomeTeam, m.AwayTeam, w.home, w.away)
		}
		if m.OddsHome != w.oddsHome || m.OddsDraw != models.NoDrawOdds || m.OddsAway != w.oddsAway {
			t.Errorf("match %d odds = %v/%v/%v, want %v/sentinel/%v", i, m.OddsHome, m.OddsDraw, m.OddsAway, w.oddsHome, w.oddsAway)
		}
	}
}

func TestScan_Dedup(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		home   float64
	}{
		{
			name:   "same group twice",
			tokens: []string{"Team Alpha", "1,50", "Nul", "3,20", "Team Beta", "4,10", "Team Alpha", "1,50", "Nul", "3,20", "Team Beta", "4,10"},
			home:   1.50,
		},
		{
			name:   "swapped sides keep first odds",
			tokens: []string{"Team Alpha", "1,50", "Nul", "3,20", "Team Beta", "4,10", "Team Beta", "4,00", "Nul", "3,10", "Team Alpha", "1,60"},
			home:   1.50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestScanner().Scan(tt.tokens, testLabels)
			if len(got) != 1 {
				t.Fatalf("Scan() returned %d matches, want 1", len(got))
			}
			if got[0].OddsHome != tt.home {
				t.Errorf("OddsHome = %v, want first-seen %v", got[0].OddsHome, tt.home)
			}
		})
	}
}

func TestScan_NoisyListing(t *testing.T) {
	tokens := []string{
		"Football", "Ligue 1", "Sam. 12 oct. 21h00",
		"Paris SG", "1,45", "Nul", "4,50", "Marseille", "6,00",
		"Coupe", "Lens", "2,10", "N", "3,30", "Lille", "3,40",
	}
	got := newTestScanner().Scan(tokens, testLabels)
	if len(got) != 2 {
		t.Fatalf("Scan() returned %d matches, want 2: %+v", len(got), got)
	}
	if got[0].HomeTeam != "Paris SG" || got[0].AwayTeam != "Marseille" {
		t.Errorf("first match = %q vs %q", got[0].HomeTeam, got[0].AwayTeam)
	}
	if got[1].HomeTeam != "Lens" || got[1].AwayTeam != "Lille" || got[1].OddsDraw != 3.30 {
		t.Errorf("second match = %+v", got[1])
	}
}

func TestScan_ExtraPricesBelongToNextEvent(t *testing.T) {
	tokens := []string{
		"Alpha FC", "2,00", "Nul", "3,00", "Beta FC", "4,00",
		"Gamma FC", "1,50", "Nul", "3,50", "Delta FC", "5,00",
	}
	got := newTestScanner().Scan(tokens, testLabels)
	if len(got) != 2 {
		t.Fatalf("Scan() returned %d matches, want 2", len(got))
	}
	if got[1].HomeTeam != "Gamma FC" || got[1].OddsHome != 1.50 || got[1].OddsAway != 5.00 {
		t.Errorf("second match = %+v", got[1])
	}
}

func TestScan_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
	}{
		{"draw marker as second name", []string{"Team Alpha", "1,50", "Nul", "3,20"}},
		{"same names", []string{"Team Alpha", "1,50", "Team Alpha", "2,20"}},
		{"out of band price", []string{"Player One", "0,50", "Player Two", "1,90"}},
		{"date instead of name", []string{"Player One", "1,50", "12/10", "1,90"}},
		{"too few tokens", []string{"Player One", "1,80", "Player Two"}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newTestScanner().Scan(tt.tokens, testLabels); len(got) != 0 {
				t.Errorf("Scan() = %+v, want no matches", got)
			}
		})
	}
}

func TestScan_TruncatesLongNames(t *testing.T) {
	long := "Association Sportive de Saint-Étienne Loire Football"
	got := newTestScanner().Scan([]string{long, "2,40", "Nul", "3,10", "Olympique Lyonnais", "2,90"}, testLabels)
	if len(got) != 1 {
		t.Fatalf("Scan() returned %d matches, want 1", len(got))
	}
	if n := len([]rune(got[0].HomeTeam)); n > 40 {
		t.Errorf("HomeTeam has %d runes, want <= 40", n)
	}
}

func TestMatchSet(t *testing.T) {
	s := NewMatchSet()
	a := models.Match{ID: "pmu_a_b", OddsHome: 1.5}
	if !s.Add(a) {
		t.Fatal("first Add returned false")
	}
	if s.Add(models.Match{ID: "pmu_a_b", OddsHome: 9}) {
		t.Error("duplicate Add returned true")
	}
	if n := s.AddAll([]models.Match{{ID: "pmu_c_d"}, {ID: "pmu_a_b"}}); n != 1 {
		t.Errorf("AddAll added %d, want 1", n)
	}
	got := s.Matches()
	if len(got) != 2 || got[0].OddsHome != 1.5 || got[1].ID != "pmu_c_d" {
		t.Errorf("Matches() = %+v", got)
	}
}
