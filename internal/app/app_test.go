package app

import (
	"context"
	"testing"

	_ "github.com/Antoine-pa/paris-sportifs/internal/parser/parsers/all"
	"github.com/Antoine-pa/paris-sportifs/internal/parser/scanner"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/config"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/interfaces"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
)

type fixedFetcher map[string]string

func (f fixedFetcher) Render(_ context.Context, _ string, page interfaces.Page) (string, error) {
	return f[page.Sport], nil
}

func TestNewPipeline_EndToEnd(t *testing.T) {
	cfg := config.Default()
	fetcher := fixedFetcher{"Football": "Paris SG\n1,45\nMatch nul\n4,50\nMarseille\n6,00\nNadal\n1,80\nFederer\n2,05"}

	p, err := NewPipeline(cfg, fetcher, nil, nil, "pmu")
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	payload, err := p.Orchestrator.Fetch(context.Background(), "pmu")
	if err != nil {
		t.Fatal(err)
	}
	if payload.Status != models.StatusSuccess || payload.Counts.Total != 2 {
		t.Fatalf("payload = %+v", payload)
	}
	// Football is not a two-outcome sport, but the sentinel draw price puts
	// the second match in the two-outcome list.
	if payload.Counts.ThreeOutcome != 1 || payload.Counts.TwoOutcome != 1 {
		t.Errorf("counts = %+v", payload.Counts)
	}
	best, ok := payload.Best()
	if !ok || best.HomeTeam != "Nadal" {
		t.Errorf("best = %+v", best)
	}
}

func TestNewPipeline_UnknownSource(t *testing.T) {
	if _, err := NewPipeline(config.Default(), fixedFetcher{}, nil, nil, "betclic"); err == nil {
		t.Error("NewPipeline() should reject an unknown source")
	}
}

func TestNewScanner_UsesConfiguredDrawMarkers(t *testing.T) {
	cfg := config.Default()
	cfg.Scanner.DrawMarkers = []string{"x"}
	got := NewScanner(cfg).Scan([]string{"Team Alpha", "1,50", "X", "3,20", "Team Beta", "4,10"}, scannerLabels())
	if len(got) != 1 || !got[0].HasDraw() {
		t.Errorf("Scan() = %+v, want one three-outcome match", got)
	}
}

func scannerLabels() scanner.Labels {
	return scanner.Labels{Source: "pmu", Bookmaker: "PMU Sport", Competition: "Football"}
}
