package actions

import (
	"context"
	"fmt"

	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/icons"
	"github.com/five82/ghdeck/internal/settings"
	"github.com/five82/ghdeck/internal/state"
)

// Direction is the way an offset control pages.
type Direction int

const (
	Left Direction = iota
	Right
)

// OffsetControl pages the monitor by one page per press.
type OffsetControl struct {
	deps Deps
	dir  Direction
}

// NewOffsetControl returns the control for dir.
func NewOffsetControl(deps Deps, dir Direction) *OffsetControl {
	return &OffsetControl{deps: deps, dir: dir}
}

func (o *OffsetControl) kind() deck.Kind {
	if o.dir == Left {
		return deck.KindOffsetLeft
	}
	return deck.KindOffsetRight
}

// next computes the offset after one press.
func (o *OffsetControl) next(g settings.Global, pageSize int) int {
	if o.dir == Left {
		return max(0, g.Offset-pageSize)
	}
	maxOffset := MaxOffset(o.deps.Cache.ItemCount(g.FilterState), pageSize)
	return min(maxOffset, g.Offset+pageSize)
}

// atBoundary reports whether a press would not move further.
func (o *OffsetControl) atBoundary(g settings.Global, pageSize int) bool {
	if o.dir == Left {
		return g.Offset <= 0
	}
	return g.Offset >= MaxOffset(o.deps.Cache.ItemCount(g.FilterState), pageSize)
}

// KeyDown moves the offset by one page, persists it and redraws.
func (o *OffsetControl) KeyDown(ctx context.Context, b deck.Button) error {
	g, err := o.deps.Settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	pageSize := PageSize(o.deps.Host)
	offset := o.next(g, pageSize)
	if offset != g.Offset {
		o.deps.logger().Info("updating monitor offset", "from", g.Offset, "to", offset)
		g.Offset = offset
		if err := o.deps.Settings.Set(ctx, g); err != nil {
			return fmt.Errorf("save offset: %w", err)
		}
	}
	o.renderWith(ctx, g, pageSize)
	o.deps.Cache.RequestRender()
	return nil
}

func (o *OffsetControl) WillAppear(ctx context.Context, b deck.Button) error {
	o.Render(ctx, state.Snapshot{})
	return nil
}

// Render is a state.Observer that tints the chevron.
func (o *OffsetControl) Render(ctx context.Context, _ state.Snapshot) {
	o.renderWith(ctx, o.deps.settingsOrDefault(ctx), PageSize(o.deps.Host))
}

func (o *OffsetControl) renderWith(ctx context.Context, g settings.Global, pageSize int) {
	name := icons.ChevronRight
	if o.dir == Left {
		name = icons.ChevronLeft
	}
	color := availableColor
	if o.atBoundary(g, pageSize) {
		color = boundaryColor
	}
	image := icons.Render(name, icons.Options{Border: 15, Color: color})
	for _, b := range o.deps.Host.Buttons(o.kind()) {
		if err := o.deps.Host.SetImage(ctx, b.ID, image); err != nil {
			o.deps.logger().Warn("set image failed", "button", b.ID, "error", err)
		}
	}
}
