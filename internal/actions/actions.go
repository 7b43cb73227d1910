package actions

import (
	"context"
	"log/slog"

	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/icons"
	"github.com/five82/ghdeck/internal/settings"
	"github.com/five82/ghdeck/internal/source"
	"github.com/five82/ghdeck/internal/state"
)

// Cache is the part of the data store the controls read. *state.Store
// implements it.
type Cache interface {
	Snapshot(filter settings.FilterState) state.Snapshot
	ItemCount(filter settings.FilterState) int
	RequestRender()
}

var _ Cache = (*state.Store)(nil)

// Deps are shared by every control.
type Deps struct {
	Host     deck.Host
	Cache    Cache
	Settings settings.Store
	Logger   *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// settingsOrDefault reads the settings, falling back to defaults so that a
// broken store renders an empty deck instead of nothing at all.
func (d Deps) settingsOrDefault(ctx context.Context) settings.Global {
	g, err := d.Settings.Get(ctx)
	if err != nil {
		d.logger().Warn("read settings failed", "error", err)
		return settings.Global{}
	}
	return g
}

// PageSize is the number of monitor keys currently on the deck.
func PageSize(host deck.Host) int {
	return len(host.Buttons(deck.KindMonitor))
}

// MaxOffset is the furthest offset that still fills the last page.
func MaxOffset(itemCount, pageSize int) int {
	return max(itemCount-pageSize, 0)
}

// Page is the 1-based page number for offset.
func Page(offset, pageSize int) int {
	if pageSize <= 0 || offset <= 0 {
		return 1
	}
	return offset/pageSize + 1
}

var (
	itemIconOptions   = icons.Options{Border: 15, YOffset: -10}
	filterIconOptions = icons.Options{Border: 15, YOffset: -7, Color: "white"}
	emptyIconOptions  = icons.Options{Border: 15}
)

// Chevron tints.
const (
	boundaryColor  = "red"
	availableColor = "white"
)

func categoryIcon(c source.Category) icons.Name {
	switch c {
	case source.AssignedIssues:
		return icons.Issue
	case source.RequestedReviews:
		return icons.CodeReview
	default:
		return icons.PullRequest
	}
}

// Register wires every control into d and the store's observer list. The
// returned Monitor is also needed by hosts that want a key's URL.
func Register(dispatcher *deck.Dispatcher, store *state.Store, deps Deps) *Monitor {
	monitor := NewMonitor(deps)
	left := NewOffsetControl(deps, Left)
	right := NewOffsetControl(deps, Right)
	filter := NewFilterToggle(deps)
	page := NewPageIndicator(deps)

	dispatcher.Register(deck.KindMonitor, monitor)
	dispatcher.Register(deck.KindOffsetLeft, left)
	dispatcher.Register(deck.KindOffsetRight, right)
	dispatcher.Register(deck.KindToggleFilter, filter)
	dispatcher.Register(deck.KindPageIndicator, page)

	store.Observe(monitor.Render)
	store.Observe(left.Render)
	store.Observe(right.Render)
	store.Observe(filter.Render)
	store.Observe(page.Render)
	return monitor
}
