package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Antoine-pa/paris-sportifs/internal/app"
	"github.com/Antoine-pa/paris-sportifs/internal/assembler"
	"github.com/Antoine-pa/paris-sportifs/internal/parser/browser"
	"github.com/Antoine-pa/paris-sportifs/internal/parser/parsers"
	"github.com/Antoine-pa/paris-sportifs/internal/parser/scraper"
	pkgconfig "github.com/Antoine-pa/paris-sportifs/internal/pkg/config"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/interfaces"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/logging"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"

	// Register all built-in sources via init().
	_ "github.com/Antoine-pa/paris-sportifs/internal/parser/parsers/all"
)

type config struct {
	configPath string
	sources    string
	file       string
	format     string
	sport      string
	bookmaker  string
	top        int
	jsonOut    string
	timeout    time.Duration
}

func main() {
	if err := run(); err != nil {
		slog.Error("oddscan failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	appConfig := pkgconfig.Default()
	if cfg.configPath != "" {
		var err error
		if appConfig, err = pkgconfig.Load(cfg.configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	// Keep stdout for the report.
	appConfig.Logging.File = ""
	if _, _, err := logging.SetupLogger(&appConfig.Logging, "oddscan"); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	var payloads map[string]assembler.Payload
	var err error
	if cfg.file != "" {
		payloads, err = scanFile(appConfig, cfg)
	} else {
		payloads, err = scrapeSources(appConfig, cfg)
	}
	if err != nil {
		return err
	}

	printRanking(os.Stdout, payloads, cfg.top)

	if cfg.jsonOut != "" {
		return writeSnapshot(cfg.jsonOut, payloads)
	}
	return nil
}

func parseFlags() config {
	var cfg config

	flag.StringVar(&cfg.configPath, "config", os.Getenv("CONFIG_PATH"), "Path to config file (can be set via CONFIG_PATH env var). Empty = built-in defaults")
	flag.StringVar(&cfg.sources, "sources", "", "Comma-separated source ids to scrape. Empty = all enabled")
	flag.StringVar(&cfg.file, "file", "", "Parse a saved page dump instead of scraping")
	flag.StringVar(&cfg.format, "format", "text", "Format of -file: text or markup")
	flag.StringVar(&cfg.sport, "sport", "Football", "Sport label for matches read from -file")
	flag.StringVar(&cfg.bookmaker, "bookmaker", "local", "Bookmaker label for matches read from -file")
	flag.IntVar(&cfg.top, "top", 10, "Matches to print per market")
	flag.StringVar(&cfg.jsonOut, "json", "", "Write the assembled results as JSON to this path ('-' for stdout)")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Minute, "Overall scrape budget")
	flag.Parse()
	return cfg
}

func scrapeSources(appConfig *pkgconfig.Config, cfg config) (map[string]assembler.Payload, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	fetcher := browser.New(ctx, appConfig.Browser)
	defer fetcher.Close()

	var only []string
	for _, s := range strings.Split(cfg.sources, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			only = append(only, s)
		}
	}
	pipeline, err := app.NewPipeline(appConfig, fetcher, nil, nil, only...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]assembler.Payload)
	for id, r := range pipeline.Orchestrator.FetchAll(ctx) {
		if r.Payload == nil {
			slog.Warn("Source skipped", "source", id, "error", r.Error)
			continue
		}
		out[id] = *r.Payload
	}
	return out, nil
}

// scanFile runs a saved page through the same extraction and evaluation as a
// live scrape.
func scanFile(appConfig *pkgconfig.Config, cfg config) (map[string]assembler.Payload, error) {
	data, err := os.ReadFile(cfg.file)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	format := interfaces.PageFormat(cfg.format)
	if format != interfaces.FormatText && format != interfaces.FormatMarkup {
		return nil, fmt.Errorf("unknown format %q (want text or markup)", cfg.format)
	}

	src := parsers.Source{ID: "file", Bookmaker: cfg.bookmaker, Format: format}
	page := interfaces.Page{Sport: cfg.sport, URL: "file://" + cfg.file, Format: format}

	started := time.Now()
	sc := scraper.New(nil, app.NewScanner(appConfig), nil)
	matches, err := sc.Extract(src, page, string(data))
	if err != nil {
		return nil, err
	}

	res := models.ScrapeResult{
		RunID:           uuid.NewString(),
		Source:          src.ID,
		Bookmaker:       src.Bookmaker,
		Matches:         matches,
		Status:          models.StatusSuccess,
		Message:         fmt.Sprintf("%d matches", len(matches)),
		StartedAt:       started,
		DurationSeconds: time.Since(started).Seconds(),
	}
	return map[string]assembler.Payload{src.ID: app.NewAssembler(appConfig).Assemble(res)}, nil
}

func printRanking(w io.Writer, payloads map[string]assembler.Payload, top int) {
	ids := make([]string, 0, len(payloads))
	for id := range payloads {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := payloads[id]
		fmt.Fprintf(w, "\n=== %s (%s) ===\n", p.Bookmaker, p.Status)
		fmt.Fprintf(w, "%s | %.1fs | %d two-outcome, %d three-outcome\n", p.Message, p.DurationSeconds, p.Counts.TwoOutcome, p.Counts.ThreeOutcome)

		printMarket(w, "Three-outcome (1N2)", p.MatchesByMarketType.ThreeOutcome, top)
		printMarket(w, "Two-outcome (1-2)", p.MatchesByMarketType.TwoOutcome, top)
	}
}

func printMarket(w io.Writer, title string, views []assembler.MatchView, top int) {
	if len(views) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for i, v := range views {
		if top > 0 && i >= top {
			break
		}
		fmt.Fprintf(w, "%2d. %s vs %s [%s] conversion %.1f%%, guaranteed %.0f, best %.0f\n",
			i+1, v.HomeTeam, v.AwayTeam, v.Sport, v.ConversionRate, v.GuaranteedProfit, v.BestProfit)
		for _, s := range v.Assignment {
			fmt.Fprintf(w, "      backer %d: %-16s @ %5.2f  +%.0f\n", s.Backer, s.Label, s.Price, s.ProfitIfWins)
		}
	}
}

func writeSnapshot(path string, payloads map[string]assembler.Payload) error {
	data, err := json.MarshalIndent(map[string]any{
		"generated_at": time.Now().UTC(),
		"sources":      payloads,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	slog.Info("Snapshot written", "path", path, "sources", len(payloads))
	return nil
}
