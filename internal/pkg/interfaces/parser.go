package interfaces

import "context"

// PageFormat is what a PageFetcher returns for a page.
type PageFormat string

const (
	FormatText   PageFormat = "text"   // rendered innerText, one visual line per line
	FormatMarkup PageFormat = "markup" // rendered outer HTML
)

// Page is one logical sub-page of a source, usually one sport listing.
type Page struct {
	Sport  string
	URL    string
	Format PageFormat
}

// PageFetcher renders a page and returns its raw text or markup. Implementations
// dismiss consent dialogs, scroll to load the listing and enforce their own
// page-load budget. They must be safe for concurrent use.
type PageFetcher interface {
	Render(ctx context.Context, sourceID string, page Page) (string, error)
}
