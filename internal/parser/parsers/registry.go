package parsers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Antoine-pa/paris-sportifs/internal/pkg/config"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/interfaces"
)

// Source describes one bookmaker: where its listing pages live and how they
// are rendered.
type Source struct {
	ID            string
	Bookmaker     string
	BaseURL       string
	Format        interfaces.PageFormat
	Pages         []interfaces.Page
	RatePerSecond float64
	Burst         int
}

// Factory returns the built-in definition of a source.
type Factory func() Source

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("parsers: empty name in Register")
	}
	if f == nil {
		panic("parsers: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("parsers: duplicate registration for " + n)
	}
	registry[n] = f
}

func FactoryByName(name string) (Factory, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[n]
	return f, ok
}

func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NewPages builds pages under baseURL, one per sport path.
func NewPages(baseURL string, format interfaces.PageFormat, sportPaths ...[2]string) []interfaces.Page {
	pages := make([]interfaces.Page, 0, len(sportPaths))
	for _, sp := range sportPaths {
		pages = append(pages, interfaces.Page{Sport: sp[0], URL: joinURL(baseURL, sp[1]), Format: format})
	}
	return pages
}

func joinURL(base, path string) string {
	switch {
	case path == "":
		return base
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Resolve merges built-in sources with the config's sources section. A config
// entry overrides the fields it sets on a built-in source with the same id,
// defines a new source otherwise, and removes the source when enabled is false.
func Resolve(cfg *config.Config) ([]Source, error) {
	byID := make(map[string]Source)
	for _, name := range AvailableNames() {
		f, _ := FactoryByName(name)
		byID[name] = f()
	}

	for _, sc := range cfg.Sources {
		id := strings.ToLower(strings.TrimSpace(sc.ID))
		if sc.Enabled != nil && !*sc.Enabled {
			delete(byID, id)
			continue
		}
		src, known := byID[id]
		if !known {
			src = Source{ID: id, Bookmaker: sc.ID, Format: interfaces.FormatText}
		}
		if err := applyOverride(&src, sc); err != nil {
			return nil, err
		}
		if len(src.Pages) == 0 {
			return nil, fmt.Errorf("source %q has no pages", id)
		}
		byID[id] = src
	}

	out := make([]Source, 0, len(byID))
	for _, s := range byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func applyOverride(src *Source, sc config.SourceConfig) error {
	if sc.Bookmaker != "" {
		src.Bookmaker = sc.Bookmaker
	}
	if sc.Format != "" {
		src.Format = interfaces.PageFormat(sc.Format)
	}
	if sc.RatePerSecond > 0 {
		src.RatePerSecond = sc.RatePerSecond
	}
	if sc.Burst > 0 {
		src.Burst = sc.Burst
	}
	rebuild := false
	if sc.BaseURL != "" {
		src.BaseURL = sc.BaseURL
		rebuild = true
	}
	if len(sc.Pages) > 0 {
		sportPaths := make([][2]string, 0, len(sc.Pages))
		for _, p := range sc.Pages {
			if p.Sport == "" {
				return fmt.Errorf("source %q: page without sport", src.ID)
			}
			sportPaths = append(sportPaths, [2]string{p.Sport, p.Path})
		}
		src.Pages = NewPages(src.BaseURL, src.Format, sportPaths...)
		return nil
	}
	if rebuild || sc.Format != "" {
		for i := range src.Pages {
			src.Pages[i].Format = src.Format
			if rebuild {
				src.Pages[i].URL = rebaseURL(src.Pages[i].URL, src.BaseURL)
			}
		}
	}
	return nil
}

// rebaseURL moves an absolute page URL onto a new base, keeping its path.
func rebaseURL(pageURL, base string) string {
	rest := pageURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		return joinURL(base, rest[i:])
	}
	return base
}
