package scanner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Kind is the role a token can play in an event listing.
type Kind int

const (
	KindName Kind = iota
	KindPrice
	KindDraw
	KindFiller
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindPrice:
		return "price"
	case KindDraw:
		return "draw"
	default:
		return "filler"
	}
}

var (
	pricePattern = regexp.MustCompile(`^\d{1,2}[,.]\d{2}$`)

	minPrice = decimal.RequireFromString("1.01")
	maxPrice = decimal.NewFromInt(100)

	fillerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[\d\s,.%+-]+$`),                     // bare digits, percentages, stray numbers
		regexp.MustCompile(`\b\d{1,2}[h:]\d{2}\b`),               // 20h45, 18:30
		regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}([/.-]\d{2,4})?`), // 12/10, 12.10.2026
		regexp.MustCompile(`(?i)\b\d{1,2}(er)?\s+(janv|f[ée]vr|mars|avr|mai|juin|juil|ao[uû]t|sept|oct|nov|d[ée]c)`),
		regexp.MustCompile(`(?i)^(lun|mar|mer|jeu|ven|sam|dim)\.?\s+\d{1,2}\b`),
		regexp.MustCompile(`(?i)^(aujourd'hui|demain|today|tomorrow)\b`),
	}
)

// Token is a classified element of the normalized token stream.
type Token struct {
	Pos   int
	Text  string
	Kind  Kind
	Price float64
}

// Classifier decides the Kind of a single token.
type Classifier struct {
	drawMarkers map[string]bool
}

func NewClassifier(drawMarkers []string) *Classifier {
	m := make(map[string]bool, len(drawMarkers))
	for _, d := range drawMarkers {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			m[d] = true
		}
	}
	return &Classifier{drawMarkers: m}
}

// Classify returns the token's kind and, for prices, its decimal value.
// Price checks come first so "1,50" is never a filler; draw markers come before
// the length rule so "N" is recognised.
func (c *Classifier) Classify(tok string) (Kind, float64) {
	if v, ok := ParsePrice(tok); ok {
		return KindPrice, v
	}
	if c.IsDraw(tok) {
		return KindDraw, 0
	}
	if utf8.RuneCountInString(tok) <= 2 {
		return KindFiller, 0
	}
	for _, p := range fillerPatterns {
		if p.MatchString(tok) {
			return KindFiller, 0
		}
	}
	return KindName, 0
}

func (c *Classifier) IsDraw(tok string) bool {
	return c.drawMarkers[strings.ToLower(strings.TrimSpace(tok))]
}

// ClassifyAll classifies a token stream, keeping positions.
func (c *Classifier) ClassifyAll(tokens []string) []Token {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		kind, price := c.Classify(t)
		out[i] = Token{Pos: i, Text: t, Kind: kind, Price: price}
	}
	return out
}

// ParsePrice parses "1,50" or "1.50" and accepts it only inside [1.01, 100].
func ParsePrice(tok string) (float64, bool) {
	tok = strings.TrimSpace(tok)
	if !pricePattern.MatchString(tok) {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.Replace(tok, ",", ".", 1))
	if err != nil {
		return 0, false
	}
	if d.LessThan(minPrice) || d.GreaterThan(maxPrice) {
		return 0, false
	}
	return d.InexactFloat64(), true
}
