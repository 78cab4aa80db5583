// Package scraper runs one scrape pass over a source: every page is rendered,
// tokenized and scanned, and the matches are merged into a single result.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Antoine-pa/paris-sportifs/internal/parser/parsers"
	"github.com/Antoine-pa/paris-sportifs/internal/parser/scanner"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/interfaces"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/metrics"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
)

type Scraper struct {
	fetcher interfaces.PageFetcher
	scanner *scanner.Scanner
	metrics *metrics.Metrics
	now     func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New returns a scraper. m may be nil.
func New(fetcher interfaces.PageFetcher, sc *scanner.Scanner, m *metrics.Metrics) *Scraper {
	return &Scraper{
		fetcher:  fetcher,
		scanner:  sc,
		metrics:  m,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

type pageFailure struct {
	sport string
	err   error
}

// Scrape renders and parses every page of src in order. Page failures are
// recorded and the pass continues; the result status reflects them.
func (s *Scraper) Scrape(ctx context.Context, src parsers.Source) models.ScrapeResult {
	started := s.now()
	res := models.ScrapeResult{
		RunID:     uuid.NewString(),
		Source:    src.ID,
		Bookmaker: src.Bookmaker,
		StartedAt: started,
	}
	log := slog.With("source", src.ID, "run_id", res.RunID)

	set := scanner.NewMatchSet()
	var failures []pageFailure
	limiter := s.limiter(src)

	for _, page := range src.Pages {
		if err := limiter.Wait(ctx); err != nil {
			failures = append(failures, pageFailure{sport: page.Sport, err: err})
			s.metrics.RecordPageFailure(src.ID, page.Sport)
			continue
		}

		raw, err := s.fetcher.Render(ctx, src.ID, page)
		if err != nil {
			log.Warn("Page render failed", "page", page.Sport, "url", page.URL, "error", err)
			failures = append(failures, pageFailure{sport: page.Sport, err: err})
			s.metrics.RecordPageFailure(src.ID, page.Sport)
			continue
		}

		matches, err := s.Extract(src, page, raw)
		if err != nil {
			log.Warn("Page parse failed", "page", page.Sport, "error", err)
			failures = append(failures, pageFailure{sport: page.Sport, err: err})
			s.metrics.RecordPageFailure(src.ID, page.Sport)
			continue
		}
		added := set.AddAll(matches)
		log.Debug("Page scanned", "page", page.Sport, "found", len(matches), "new", added)
	}

	res.Matches = set.Matches()
	res.Status, res.Message = summarize(len(src.Pages), res.Count(), failures)

	elapsed := s.now().Sub(started)
	res.DurationSeconds = math.Round(elapsed.Seconds()*10) / 10
	s.metrics.RecordScrape(src.ID, string(res.Status), elapsed)
	log.Info("Scrape finished", "status", res.Status, "matches", res.Count(), "failed_pages", len(failures), "duration", elapsed)
	return res
}

// Extract turns one rendered page into matches labelled with the page sport.
// Markup pages are reduced to odds containers first.
func (s *Scraper) Extract(src parsers.Source, page interfaces.Page, raw string) ([]models.Match, error) {
	text := raw
	if page.Format == interfaces.FormatMarkup {
		reduced, err := scanner.ReduceMarkup(raw)
		if err != nil {
			return nil, fmt.Errorf("reduce markup: %w", err)
		}
		text = reduced
	}

	labels := scanner.Labels{
		Source:      src.ID,
		Bookmaker:   src.Bookmaker,
		Competition: page.Sport,
		Sport:       page.Sport,
		URL:         page.URL,
	}
	matches := s.scanner.Scan(scanner.Tokenize(text), labels)
	for i, m := range matches {
		if m.Sport == "" {
			matches[i] = m.WithSport(page.Sport)
		}
	}
	return matches, nil
}

func summarize(pages, found int, failures []pageFailure) (models.ScrapeStatus, string) {
	if pages == 0 {
		return models.StatusError, "no pages configured"
	}
	if len(failures) == 0 {
		return models.StatusSuccess, fmt.Sprintf("%d matches", found)
	}

	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.sport, f.err))
	}
	detail := strings.Join(parts, "; ")

	if len(failures) == pages {
		return models.StatusError, fmt.Sprintf("all %d pages failed: %s", pages, detail)
	}
	if found > 0 {
		return models.StatusPartial, fmt.Sprintf("%d matches, %d of %d pages failed: %s", found, len(failures), pages, detail)
	}
	return models.StatusSuccess, fmt.Sprintf("0 matches, %d of %d pages failed: %s", len(failures), pages, detail)
}

func (s *Scraper) limiter(src parsers.Source) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.limiters[src.ID]; ok {
		return l
	}
	limit := rate.Inf
	if src.RatePerSecond > 0 {
		limit = rate.Limit(src.RatePerSecond)
	}
	burst := src.Burst
	if burst < 1 {
		burst = 1
	}
	l := rate.NewLimiter(limit, burst)
	s.limiters[src.ID] = l
	return l
}
