package parsers_test

import (
	"testing"

	"github.com/Antoine-pa/paris-sportifs/internal/parser/parsers"
	_ "github.com/Antoine-pa/paris-sportifs/internal/parser/parsers/all"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/config"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/interfaces"
)

func TestResolve_BuiltIns(t *testing.T) {
	sources, err := parsers.Resolve(config.Default())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(sources) != 2 || sources[0].ID != "pmu" || sources[1].ID != "winamax" {
		t.Fatalf("Resolve() = %+v, want pmu and winamax", sources)
	}
	if sources[0].Pages[0].URL != "https://parisportif.pmu.fr/pari/sport/1" {
		t.Errorf("pmu page URL = %q", sources[0].Pages[0].URL)
	}
	if sources[1].Format != interfaces.FormatMarkup || len(sources[1].Pages) != 5 {
		t.Errorf("winamax = %+v", sources[1])
	}
}

func TestResolve_Overrides(t *testing.T) {
	disabled := false
	cfg := config.Default()
	cfg.Sources = []config.SourceConfig{
		{ID: "winamax", Enabled: &disabled},
		{ID: "pmu", BaseURL: "https://mirror.example", Pages: []config.PageConfig{{Sport: "Football", Path: "/foot"}, {Sport: "Tennis", Path: "/tennis"}}},
		{ID: "local", Bookmaker: "Local Book", Format: "markup", BaseURL: "http://localhost:8080", Pages: []config.PageConfig{{Sport: "Football", Path: "foot.html"}}},
	}

	sources, err := parsers.Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("Resolve() returned %d sources, want 2", len(sources))
	}
	local, pmu := sources[0], sources[1]
	if local.ID != "local" || local.Bookmaker != "Local Book" || local.Pages[0].URL != "http://localhost:8080/foot.html" || local.Pages[0].Format != interfaces.FormatMarkup {
		t.Errorf("local = %+v", local)
	}
	if pmu.Bookmaker != "PMU Sport" || len(pmu.Pages) != 2 || pmu.Pages[1].URL != "https://mirror.example/tennis" {
		t.Errorf("pmu = %+v", pmu)
	}
}

func TestResolve_BaseURLOnlyRebasesPages(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []config.SourceConfig{{ID: "pmu", BaseURL: "http://127.0.0.1:9000"}}
	sources, err := parsers.Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := sources[0].Pages[0].URL; got != "http://127.0.0.1:9000/pari/sport/1" {
		t.Errorf("rebased URL = %q", got)
	}
}

func TestResolve_NewSourceWithoutPages(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []config.SourceConfig{{ID: "empty", BaseURL: "http://x"}}
	if _, err := parsers.Resolve(cfg); err == nil {
		t.Error("Resolve() should reject a source without pages")
	}
}
