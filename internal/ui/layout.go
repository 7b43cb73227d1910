package ui

import (
	"fmt"
	"time"

	"github.com/five82/ghdeck/internal/config"
	"github.com/five82/ghdeck/internal/deck"
)

// Key cell dimensions, borders excluded. A key fits one label line of
// actions.LabelWidth runes with a column of padding each side.
const (
	keyWidth  = 13
	keyHeight = 4
)

// Timing constants.
const (
	// LogRefreshInterval is how often the footer re-reads the log file.
	LogRefreshInterval = time.Second

	// LogFooterLines is the number of log lines shown under the grid.
	LogFooterLines = 6
)

var cellKinds = map[rune]deck.Kind{
	'M': deck.KindMonitor,
	'<': deck.KindOffsetLeft,
	'>': deck.KindOffsetRight,
	'F': deck.KindToggleFilter,
	'P': deck.KindPageIndicator,
}

// Cell is one position of the grid. Empty cells have no button.
type Cell struct {
	Button deck.Button
	Empty  bool
}

// ParseLayout turns a deck layout into a grid of cells with stable button IDs
// of the form r<row>c<column>.
func ParseLayout(d config.Deck) ([][]Cell, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	grid := make([][]Cell, d.Rows)
	for r, row := range d.Layout {
		grid[r] = make([]Cell, d.Columns)
		for c, ch := range row {
			kind, ok := cellKinds[ch]
			if !ok {
				grid[r][c] = Cell{Empty: true}
				continue
			}
			grid[r][c] = Cell{Button: deck.Button{
				ID:          fmt.Sprintf("r%dc%d", r, c),
				Kind:        kind,
				Coordinates: &deck.Coordinates{Row: r, Column: c},
			}}
		}
	}
	return grid, nil
}
