// Package winamax registers the Winamax source. Winamax pages are read as
// markup: odds buttons are grouped by their container before scanning.
package winamax

import (
	"github.com/Antoine-pa/paris-sportifs/internal/parser/parsers"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/interfaces"
)

const (
	ID            = "winamax"
	bookmakerName = "Winamax"
	baseURL       = "https://www.winamax.fr"
)

func init() {
	parsers.Register(ID, New)
}

func New() parsers.Source {
	return parsers.Source{
		ID:            ID,
		Bookmaker:     bookmakerName,
		BaseURL:       baseURL,
		Format:        interfaces.FormatMarkup,
		RatePerSecond: 1,
		Burst:         1,
		Pages: parsers.NewPages(baseURL, interfaces.FormatMarkup,
			[2]string{"Football", "/paris-sportifs/sports/1"},
			[2]string{"Rugby", "/paris-sportifs/sports/12"},
			[2]string{"Hockey", "/paris-sportifs/sports/4"},
			[2]string{"Basketball", "/paris-sportifs/sports/2"},
			[2]string{"Tennis", "/paris-sportifs/sports/5"},
		),
	}
}
