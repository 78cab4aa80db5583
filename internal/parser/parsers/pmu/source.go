// Package pmu registers the PMU Sport source. PMU pages are scanned from their
// rendered body text: each event is laid out one field per line.
package pmu

import (
	"github.com/Antoine-pa/paris-sportifs/internal/parser/parsers"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/interfaces"
)

const (
	ID            = "pmu"
	bookmakerName = "PMU Sport"
	baseURL       = "https://parisportif.pmu.fr"
)

func init() {
	parsers.Register(ID, New)
}

func New() parsers.Source {
	return parsers.Source{
		ID:            ID,
		Bookmaker:     bookmakerName,
		BaseURL:       baseURL,
		Format:        interfaces.FormatText,
		RatePerSecond: 0.5,
		Burst:         1,
		Pages: parsers.NewPages(baseURL, interfaces.FormatText,
			[2]string{"Football", "/pari/sport/1"},
		),
	}
}
