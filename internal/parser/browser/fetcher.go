// Package browser renders bookmaker pages in headless Chrome.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Antoine-pa/paris-sportifs/internal/pkg/config"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/interfaces"
)

// Fetcher implements interfaces.PageFetcher on one shared browser process.
// Every Render opens its own tab, so concurrent calls do not interfere.
type Fetcher struct {
	cfg         config.BrowserConfig
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

var _ interfaces.PageFetcher = (*Fetcher)(nil)

// New starts the browser allocator. The browser itself is launched lazily by
// the first Render. Call Close to shut it down.
func New(ctx context.Context, cfg config.BrowserConfig) *Fetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1920, 1080),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	return &Fetcher{cfg: cfg, allocCtx: allocCtx, cancelAlloc: cancel}
}

func (f *Fetcher) Close() {
	f.cancelAlloc()
}

// Render loads page, dismisses the consent banner when one matches, scrolls to
// load lazy listings and returns the body text or the document markup.
// file:// URLs are read from disk without a browser.
func (f *Fetcher) Render(ctx context.Context, sourceID string, page interfaces.Page) (string, error) {
	if path, ok := localPath(page.URL); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	}

	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		slog.Debug("chromedp", "source", sourceID, "message", fmt.Sprintf(format, v...))
	}))
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	timeout := f.cfg.PageTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	tabCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	start := time.Now()
	var out string
	err := chromedp.Run(tabCtx, f.actions(page, &out)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("render %s: %w", page.URL, err)
	}
	slog.Debug("Page rendered", "source", sourceID, "page", page.Sport, "bytes", len(out), "duration", time.Since(start))
	return out, nil
}

func (f *Fetcher) actions(page interfaces.Page, out *string) []chromedp.Action {
	actions := []chromedp.Action{
		chromedp.Navigate(page.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.cfg.SettleDelay),
	}
	if len(f.cfg.ConsentTexts) > 0 {
		var clicked bool
		actions = append(actions,
			chromedp.Evaluate(consentScript(f.cfg.ConsentTexts), &clicked),
			chromedp.Sleep(f.cfg.SettleDelay/2),
		)
	}
	for i := 0; i < f.cfg.ScrollSteps; i++ {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollBy(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(f.cfg.ScrollDelay),
		)
	}
	if page.Format == interfaces.FormatMarkup {
		actions = append(actions, chromedp.OuterHTML("html", out, chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.Evaluate(`document.body.innerText`, out))
	}
	return actions
}

// consentScript clicks the first button whose trimmed text equals one of texts,
// ignoring case, and evaluates to whether it clicked.
func consentScript(texts []string) string {
	lowered := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}
	list, _ := json.Marshal(lowered)
	return fmt.Sprintf(`(() => {
  const wanted = %s;
  for (const b of document.querySelectorAll('button, [role="button"]')) {
    const t = (b.innerText || '').trim().toLowerCase();
    if (wanted.includes(t)) { b.click(); return true; }
  }
  return false;
})()`, list)
}

func localPath(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	if u.Path == "" {
		return u.Opaque, u.Opaque != ""
	}
	return u.Path, true
}
