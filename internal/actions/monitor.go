package actions

import (
	"context"
	"sync"

	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/icons"
	"github.com/five82/ghdeck/internal/state"
)

// Monitor projects the current page of items onto the monitor keys.
type Monitor struct {
	deps Deps

	mu   sync.RWMutex
	urls map[string]string // button ID -> item URL, rebuilt on every pass
}

// NewMonitor returns a Monitor with an empty URL mapping.
func NewMonitor(deps Deps) *Monitor {
	return &Monitor{deps: deps, urls: map[string]string{}}
}

// Render is a state.Observer. Items are taken from snap in category order,
// the first Offset of them are skipped, and the rest fill the keys in (row,
// column) order. Keys left over are cleared.
func (m *Monitor) Render(ctx context.Context, snap state.Snapshot) {
	g := m.deps.settingsOrDefault(ctx)
	buttons := deck.Order(m.deps.Host.Buttons(deck.KindMonitor))
	entries := snap.Filter(g.FilterState).Entries()

	start := min(max(g.Offset, 0), len(entries))
	visible := entries[start:]

	urls := make(map[string]string, len(buttons))
	for i, b := range buttons {
		var image, title string
		if i < len(visible) {
			e := visible[i]
			image = icons.Render(categoryIcon(e.Category), itemIconOptions)
			title = ItemTitle(e.Item, g.WrapText)
			urls[b.ID] = e.Item.URL
		} else {
			image = icons.Render(icons.GitHub, emptyIconOptions)
		}
		m.write(ctx, b.ID, image, title)
	}

	m.mu.Lock()
	m.urls = urls
	m.mu.Unlock()
}

func (m *Monitor) write(ctx context.Context, id, image, title string) {
	if err := m.deps.Host.SetImage(ctx, id, image); err != nil {
		m.deps.logger().Warn("set image failed", "button", id, "error", err)
	}
	if err := m.deps.Host.SetTitle(ctx, id, title); err != nil {
		m.deps.logger().Warn("set title failed", "button", id, "error", err)
	}
}

// URL returns the item URL shown on button id, if any.
func (m *Monitor) URL(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	url, ok := m.urls[id]
	return url, ok
}

// KeyDown opens the item on the pressed key. Pressing an empty key does nothing.
func (m *Monitor) KeyDown(ctx context.Context, b deck.Button) error {
	url, ok := m.URL(b.ID)
	if !ok {
		return nil
	}
	m.deps.logger().Info("opening item", "url", url)
	return m.deps.Host.OpenURL(ctx, url)
}

// WillAppear asks for a redraw; a new key changes the page size.
func (m *Monitor) WillAppear(ctx context.Context, b deck.Button) error {
	m.deps.Cache.RequestRender()
	return nil
}

// WillDisappear asks for a redraw so the remaining keys close the gap.
func (m *Monitor) WillDisappear(ctx context.Context, b deck.Button) error {
	m.deps.Cache.RequestRender()
	return nil
}
