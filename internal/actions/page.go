package actions

import (
	"context"
	"strconv"

	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/state"
)

// PageIndicator shows the current page number.
type PageIndicator struct {
	deps Deps
}

func NewPageIndicator(deps Deps) *PageIndicator {
	return &PageIndicator{deps: deps}
}

// KeyDown does nothing.
func (p *PageIndicator) KeyDown(ctx context.Context, b deck.Button) error {
	return nil
}

func (p *PageIndicator) WillAppear(ctx context.Context, b deck.Button) error {
	p.Render(ctx, state.Snapshot{})
	return nil
}

// Render is a state.Observer.
func (p *PageIndicator) Render(ctx context.Context, _ state.Snapshot) {
	g := p.deps.settingsOrDefault(ctx)
	title := strconv.Itoa(Page(g.Offset, PageSize(p.deps.Host)))
	for _, b := range p.deps.Host.Buttons(deck.KindPageIndicator) {
		if err := p.deps.Host.SetTitle(ctx, b.ID, title); err != nil {
			p.deps.logger().Warn("set title failed", "button", b.ID, "error", err)
		}
	}
}
