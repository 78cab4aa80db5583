// Package app builds the scan, evaluation and fetch components from config.
package app

import (
	"fmt"

	"github.com/Antoine-pa/paris-sportifs/internal/arbitrage"
	"github.com/Antoine-pa/paris-sportifs/internal/assembler"
	"github.com/Antoine-pa/paris-sportifs/internal/orchestrator"
	"github.com/Antoine-pa/paris-sportifs/internal/parser/parsers"
	"github.com/Antoine-pa/paris-sportifs/internal/parser/scanner"
	"github.com/Antoine-pa/paris-sportifs/internal/parser/scraper"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/config"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/interfaces"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/metrics"
)

func NewScanner(cfg *config.Config) *scanner.Scanner {
	return scanner.New(scanner.NewClassifier(cfg.Scanner.DrawMarkers), scanner.Options{
		WindowSize:    cfg.Scanner.WindowSize,
		MinTokens:     cfg.Scanner.MinTokens,
		MaxNameLength: cfg.Scanner.MaxNameLength,
		IDNameLength:  cfg.Scanner.IDNameLength,
	})
}

func NewCalculator(cfg *config.Config) *arbitrage.Calculator {
	a := cfg.Arbitrage
	return arbitrage.New(arbitrage.Options{
		StakeUnit:        a.StakeUnit,
		ProfitPrecision:  a.ProfitPrecision,
		RatePrecision:    a.RatePrecision,
		TwoOutcomeSports: a.TwoOutcomeSports,
		DrawBand:         arbitrage.Band{Min: a.DrawBand.Min, Max: a.DrawBand.Max},
	})
}

func NewAssembler(cfg *config.Config) *assembler.Assembler {
	return assembler.New(NewCalculator(cfg), cfg.Arbitrage.ResultLimit)
}

// Pipeline is the fetch stack shared by the daemon and the CLI.
type Pipeline struct {
	Sources      []parsers.Source
	Scraper      *scraper.Scraper
	Assembler    *assembler.Assembler
	Orchestrator *orchestrator.Orchestrator
}

// NewPipeline resolves the configured sources and wires them to fetcher.
// only, when non-empty, restricts the pipeline to those source ids.
func NewPipeline(cfg *config.Config, fetcher interfaces.PageFetcher, m *metrics.Metrics, onFresh func(assembler.Payload), only ...string) (*Pipeline, error) {
	sources, err := parsers.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	if len(only) > 0 {
		sources, err = selectSources(sources, only)
		if err != nil {
			return nil, err
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources enabled")
	}

	sc := scraper.New(fetcher, NewScanner(cfg), m)
	asm := NewAssembler(cfg)
	orch := orchestrator.New(sources, sc, asm, orchestrator.Options{
		TTL:     cfg.Cache.TTL,
		Metrics: m,
		OnFresh: onFresh,
	})
	return &Pipeline{Sources: sources, Scraper: sc, Assembler: asm, Orchestrator: orch}, nil
}

func selectSources(all []parsers.Source, only []string) ([]parsers.Source, error) {
	byID := make(map[string]parsers.Source, len(all))
	for _, s := range all {
		byID[s.ID] = s
	}
	out := make([]parsers.Source, 0, len(only))
	for _, id := range only {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown source %q (available: %v)", id, parsers.AvailableNames())
		}
		out = append(out, s)
	}
	return out, nil
}
