package deck

import (
	"context"
	"sort"
)

// Kind tags which control a button implements.
type Kind string

const (
	KindMonitor       Kind = "dev.ghdeck.monitor"
	KindOffsetLeft    Kind = "dev.ghdeck.offset-left"
	KindOffsetRight   Kind = "dev.ghdeck.offset-right"
	KindToggleFilter  Kind = "dev.ghdeck.toggle-filter"
	KindPageIndicator Kind = "dev.ghdeck.page-indicator"
)

// Kinds lists every kind ghdeck registers.
var Kinds = []Kind{KindMonitor, KindOffsetLeft, KindOffsetRight, KindToggleFilter, KindPageIndicator}

// Coordinates is a button's grid position.
type Coordinates struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Button is one visible key. ID is stable for as long as the key is visible.
// Coordinates is nil for keys the host cannot place on the grid, such as keys
// inside a multi-action.
type Button struct {
	ID          string
	Kind        Kind
	Coordinates *Coordinates
}

// Display writes to individual buttons.
type Display interface {
	SetImage(ctx context.Context, id, image string) error
	SetTitle(ctx context.Context, id, title string) error
}

// Host is a physical or virtual deck.
type Host interface {
	Display
	// Buttons returns the currently visible buttons of kind, in no particular
	// order.
	Buttons(kind Kind) []Button
	// OpenURL asks the host to open url in the default handler. It does not
	// wait for the handler.
	OpenURL(ctx context.Context, url string) error
}

// Order returns a copy of buttons sorted by (row, column). Buttons without
// coordinates come last, ordered by ID.
func Order(buttons []Button) []Button {
	out := append([]Button(nil), buttons...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Coordinates, out[j].Coordinates
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Row != b.Row:
			return a.Row < b.Row
		case a.Column != b.Column:
			return a.Column < b.Column
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}
