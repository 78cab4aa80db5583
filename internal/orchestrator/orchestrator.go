// Package orchestrator serves scrape results per source from a TTL cache.
// Fetches of the same source are serialized; different sources never wait on
// each other.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Antoine-pa/paris-sportifs/internal/assembler"
	"github.com/Antoine-pa/paris-sportifs/internal/parser/parsers"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/metrics"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/parserutil"
)

// ErrUnknownSource is returned for a source id the orchestrator was not built with.
var ErrUnknownSource = errors.New("unknown source")

// State is the lifecycle of one source: pending, then loading, then ready or
// error. Ready and error go back to loading on the next real fetch.
type State int32

const (
	StatePending State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "pending"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for _, c := range []State{StatePending, StateLoading, StateReady, StateError} {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Scraper runs one full scrape pass over a source.
type Scraper interface {
	Scrape(ctx context.Context, src parsers.Source) models.ScrapeResult
}

type Options struct {
	TTL     time.Duration
	Clock   func() time.Time
	Metrics *metrics.Metrics
	// OnFresh is called with every payload produced by a real fetch that did
	// not end in error. It runs on the fetching goroutine and must not block.
	OnFresh func(assembler.Payload)
}

type cacheEntry struct {
	payload  assembler.Payload
	storedAt time.Time
}

// slot owns everything the orchestrator knows about one source. mu serializes
// real fetches; entry and state are readable without it. attempts counts
// finished scrapes and last holds the newest one, error or not, so callers that
// queued behind an attempt share its result.
type slot struct {
	src      parsers.Source
	mu       sync.Mutex
	entry    atomic.Pointer[cacheEntry]
	state    atomic.Int32
	attempts atomic.Uint64
	last     atomic.Pointer[assembler.Payload]
}

type Orchestrator struct {
	scraper   Scraper
	assembler *assembler.Assembler
	ttl       time.Duration
	now       func() time.Time
	metrics   *metrics.Metrics
	onFresh   func(assembler.Payload)

	slots map[string]*slot
	ids   []string
}

const DefaultTTL = 30 * time.Minute

func New(sources []parsers.Source, scraper Scraper, asm *assembler.Assembler, opts Options) *Orchestrator {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	o := &Orchestrator{
		scraper:   scraper,
		assembler: asm,
		ttl:       opts.TTL,
		now:       opts.Clock,
		metrics:   opts.Metrics,
		onFresh:   opts.OnFresh,
		slots:     make(map[string]*slot, len(sources)),
	}
	for _, src := range sources {
		id := normalizeID(src.ID)
		o.slots[id] = &slot{src: src}
		o.ids = append(o.ids, id)
	}
	sort.Strings(o.ids)
	return o
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Sources lists the known source ids in order.
func (o *Orchestrator) Sources() []string {
	out := make([]string, len(o.ids))
	copy(out, o.ids)
	return out
}

// Fetch returns the cached payload for source while it is younger than the
// TTL, and otherwise runs exactly one scrape for it, however many callers ask
// at the same time. Error results are not cached: callers that were waiting
// on the failed attempt get its result, the next caller scrapes again.
func (o *Orchestrator) Fetch(ctx context.Context, source string) (assembler.Payload, error) {
	return o.fetch(ctx, source, false)
}

// Refresh scrapes source even if its cache is valid. Readers keep getting the
// previous entry until the new one is stored; an error result leaves it in place.
func (o *Orchestrator) Refresh(ctx context.Context, source string) (assembler.Payload, error) {
	return o.fetch(ctx, source, true)
}

func (o *Orchestrator) fetch(ctx context.Context, source string, force bool) (assembler.Payload, error) {
	sl, ok := o.slots[normalizeID(source)]
	if !ok {
		return assembler.Payload{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	if !force {
		if p, ok := o.cached(sl); ok {
			o.metrics.RecordCache(sl.src.ID, true)
			return p, nil
		}
	}

	seen := sl.attempts.Load()
	sl.mu.Lock()
	defer sl.mu.Unlock()

	// Another caller may have finished a scrape while we waited for the lock.
	if !force {
		if p, ok := o.cached(sl); ok {
			o.metrics.RecordCache(sl.src.ID, true)
			return p, nil
		}
		if sl.attempts.Load() != seen {
			if last := sl.last.Load(); last != nil {
				o.metrics.RecordCache(sl.src.ID, true)
				p := *last
				p.FromCache = true
				return p, nil
			}
		}
		o.metrics.RecordCache(sl.src.ID, false)
	}

	sl.state.Store(int32(StateLoading))
	res := o.scraper.Scrape(ctx, sl.src)
	payload := o.assembler.Assemble(res)
	sl.last.Store(&payload)
	sl.attempts.Add(1)

	if res.Status == models.StatusError {
		sl.state.Store(int32(StateError))
		slog.Warn("Fetch failed", "source", sl.src.ID, "message", res.Message)
		return payload, nil
	}

	best := 0.0
	if b, ok := payload.Best(); ok {
		best = b.ConversionRate
	}
	o.metrics.SetMatches(sl.src.ID, payload.Counts.TwoOutcome, payload.Counts.ThreeOutcome, best)

	sl.entry.Store(&cacheEntry{payload: payload, storedAt: o.now()})
	sl.state.Store(int32(StateReady))
	if o.onFresh != nil {
		o.onFresh(payload)
	}
	return payload, nil
}

// cached returns a copy of the slot's payload marked as coming from cache, if
// the entry is still within the TTL.
func (o *Orchestrator) cached(sl *slot) (assembler.Payload, bool) {
	e := sl.entry.Load()
	if e == nil || o.now().Sub(e.storedAt) >= o.ttl {
		return assembler.Payload{}, false
	}
	p := e.payload
	p.FromCache = true
	return p, true
}

// Result is one source's outcome in FetchAll: a payload or an error message.
type Result struct {
	Payload *assembler.Payload `json:"payload,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// FetchAll fetches the given sources, or all of them when none are given, on
// a pool with one worker per source (at least two). Each source gets its own
// entry; one failing never affects the others.
func (o *Orchestrator) FetchAll(ctx context.Context, sources ...string) map[string]Result {
	return o.runAll(ctx, o.Fetch, sources)
}

// RefreshAll is FetchAll with Refresh semantics.
func (o *Orchestrator) RefreshAll(ctx context.Context, sources ...string) map[string]Result {
	return o.runAll(ctx, o.Refresh, sources)
}

func (o *Orchestrator) runAll(ctx context.Context, fetch func(context.Context, string) (assembler.Payload, error), sources []string) map[string]Result {
	if len(sources) == 0 {
		sources = o.ids
	}

	var mu sync.Mutex
	out := make(map[string]Result, len(sources))

	parserutil.RunAll(ctx, sources, func(ctx context.Context, id string) error {
		p, err := fetch(ctx, id)
		r := Result{Payload: &p}
		if err != nil {
			r = Result{Error: err.Error()}
		}
		mu.Lock()
		out[normalizeID(id)] = r
		mu.Unlock()
		return err
	}, parserutil.RunOptions[string]{
		Workers: max(len(sources), 2),
		Name:    func(id string) string { return id },
		OnError: func(id string, err error) {
			slog.Warn("Fetch rejected", "source", id, "error", err)
		},
	})
	return out
}

// Invalidate drops every cache entry. In-flight fetches are not cancelled and
// will store their result when they finish.
func (o *Orchestrator) Invalidate() {
	for _, sl := range o.slots {
		sl.entry.Store(nil)
		sl.state.CompareAndSwap(int32(StateReady), int32(StatePending))
	}
}

// SourceStatus is the per-source view returned by Status.
type SourceStatus struct {
	Source           string              `json:"source"`
	Bookmaker        string              `json:"bookmaker"`
	State            State               `json:"state"`
	CacheAgeSeconds  *float64            `json:"cache_age_seconds,omitempty"`
	ExpiresInSeconds *float64            `json:"expires_in_seconds,omitempty"`
	LastStatus       models.ScrapeStatus `json:"last_status,omitempty"`
	Counts           *assembler.Counts   `json:"counts,omitempty"`
}

// Status reports every source's state and, for a live cache entry, its age
// and remaining lifetime. It never blocks on a running fetch.
func (o *Orchestrator) Status() map[string]SourceStatus {
	now := o.now()
	out := make(map[string]SourceStatus, len(o.slots))
	for id, sl := range o.slots {
		st := SourceStatus{
			Source:    sl.src.ID,
			Bookmaker: sl.src.Bookmaker,
			State:     State(sl.state.Load()),
		}
		if e := sl.entry.Load(); e != nil {
			age := now.Sub(e.storedAt)
			if age < o.ttl {
				ageSec := roundTenth(age.Seconds())
				expSec := roundTenth((o.ttl - age).Seconds())
				counts := e.payload.Counts
				st.CacheAgeSeconds = &ageSec
				st.ExpiresInSeconds = &expSec
				st.LastStatus = e.payload.Status
				st.Counts = &counts
			}
		}
		out[id] = st
	}
	return out
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
