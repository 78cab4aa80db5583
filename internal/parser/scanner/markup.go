package scanner

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	oddsButtonSelector         = ".bet-group-outcome-odd"
	fallbackOddsButtonSelector = `[class*="odd-button"]`
)

// ReduceMarkup turns a rendered odds page into a token stream, one token per
// line. Odds buttons are grouped by their grandparent container; only
// containers holding 2 or 3 buttons are kept, each once, in document order.
func ReduceMarkup(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}

	selector := oddsButtonSelector
	buttons := doc.Find(selector)
	if buttons.Length() == 0 {
		selector = fallbackOddsButtonSelector
		buttons = doc.Find(selector)
	}

	processed := make(map[*html.Node]bool)
	var lines []string
	buttons.Each(func(_ int, btn *goquery.Selection) {
		group := btn.Parent().Parent()
		if group.Length() == 0 {
			return
		}
		node := group.Get(0)
		if processed[node] {
			return
		}
		if n := group.Find(selector).Length(); n != 2 && n != 3 {
			return
		}
		processed[node] = true
		lines = appendTextNodes(lines, node)
	})
	return strings.Join(lines, "\n"), nil
}

func appendTextNodes(out []string, n *html.Node) []string {
	switch n.Type {
	case html.TextNode:
		if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
			out = append(out, t)
		}
		return out
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return out
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = appendTextNodes(out, c)
	}
	return out
}
