package actions

import (
	"context"
	"fmt"

	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/icons"
	"github.com/five82/ghdeck/internal/settings"
	"github.com/five82/ghdeck/internal/state"
)

// FilterToggle cycles the active filter.
type FilterToggle struct {
	deps Deps
}

func NewFilterToggle(deps Deps) *FilterToggle {
	return &FilterToggle{deps: deps}
}

// FilterFace is the icon and label shown for a filter.
func FilterFace(f settings.FilterState) (icons.Name, string) {
	switch f {
	case settings.ShowPullRequests:
		return icons.PullRequest, "Pull\nRequests"
	case settings.ShowIssues:
		return icons.Issue, "Assigned\nIssues"
	case settings.ShowCodeReviews:
		return icons.CodeReview, "Requested\nReviews"
	default:
		return icons.Filter, "All"
	}
}

// KeyDown advances to the next filter and resets the offset, since the old
// position means nothing in a different list.
func (f *FilterToggle) KeyDown(ctx context.Context, b deck.Button) error {
	g, err := f.deps.Settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	g.FilterState = g.FilterState.Next()
	g.Offset = 0
	if err := f.deps.Settings.Set(ctx, g); err != nil {
		return fmt.Errorf("save filter: %w", err)
	}
	f.deps.logger().Info("filter changed", "filter", g.FilterState.String())
	f.renderWith(ctx, g.FilterState)
	f.deps.Cache.RequestRender()
	return nil
}

func (f *FilterToggle) WillAppear(ctx context.Context, b deck.Button) error {
	f.Render(ctx, state.Snapshot{})
	return nil
}

// Render is a state.Observer; it keeps the key in step with edits made
// elsewhere, such as in the settings file.
func (f *FilterToggle) Render(ctx context.Context, _ state.Snapshot) {
	f.renderWith(ctx, f.deps.settingsOrDefault(ctx).FilterState)
}

func (f *FilterToggle) renderWith(ctx context.Context, filter settings.FilterState) {
	name, label := FilterFace(filter)
	image := icons.Render(name, filterIconOptions)
	for _, b := range f.deps.Host.Buttons(deck.KindToggleFilter) {
		if err := f.deps.Host.SetImage(ctx, b.ID, image); err != nil {
			f.deps.logger().Warn("set image failed", "button", b.ID, "error", err)
		}
		if err := f.deps.Host.SetTitle(ctx, b.ID, label); err != nil {
			f.deps.logger().Warn("set title failed", "button", b.ID, "error", err)
		}
	}
}
