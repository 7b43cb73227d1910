package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// FilterState narrows the monitor grid to one category, or shows all of them.
// The numeric values are persisted and must not be reordered.
type FilterState int

const (
	ShowAll FilterState = iota
	ShowPullRequests
	ShowIssues
	ShowCodeReviews

	filterStateCount = 4
)

// Next cycles to the following filter, wrapping after ShowCodeReviews.
func (f FilterState) Next() FilterState {
	return FilterState((int(f.normalized()) + 1) % filterStateCount)
}

func (f FilterState) normalized() FilterState {
	if f < ShowAll || f >= filterStateCount {
		return ShowAll
	}
	return f
}

func (f FilterState) String() string {
	switch f {
	case ShowAll:
		return "all"
	case ShowPullRequests:
		return "pull_requests"
	case ShowIssues:
		return "issues"
	case ShowCodeReviews:
		return "code_reviews"
	default:
		return fmt.Sprintf("filter(%d)", int(f))
	}
}

// ParseFilter accepts either a filter name or its number.
func ParseFilter(raw string) (FilterState, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	for f := ShowAll; f < filterStateCount; f++ {
		if trimmed == f.String() {
			return f, nil
		}
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 || n >= filterStateCount {
		return ShowAll, fmt.Errorf("unknown filter %q (want all, pull_requests, issues or code_reviews)", raw)
	}
	return FilterState(n), nil
}

// Global is the user-editable state shared by every button. The JSON names
// match what the Stream Deck stores as plugin global settings.
type Global struct {
	AccessToken string      `json:"accessToken" toml:"access_token"`
	WrapText    bool        `json:"wrapText" toml:"wrap_text"`
	FilterState FilterState `json:"filterState" toml:"filter_state"`
	Offset      int         `json:"offset" toml:"offset"`
}

// Normalize clamps out-of-range values read from storage.
func (g Global) Normalize() Global {
	g.AccessToken = strings.TrimSpace(g.AccessToken)
	g.FilterState = g.FilterState.normalized()
	if g.Offset < 0 {
		g.Offset = 0
	}
	return g
}

// Redacted returns a copy safe to print.
func (g Global) Redacted() Global {
	if g.AccessToken == "" {
		return g
	}
	tail := ""
	if len(g.AccessToken) > 8 {
		tail = g.AccessToken[len(g.AccessToken)-4:]
	}
	g.AccessToken = "****" + tail
	return g
}

// Change describes one settings update field by field.
type Change struct {
	Previous Global
	Current  Global

	Token    bool
	WrapText bool
	Filter   bool
	Offset   bool
}

// Any reports whether any field changed.
func (c Change) Any() bool {
	return c.Token || c.WrapText || c.Filter || c.Offset
}

// AffectsRender reports whether the monitor grid must be redrawn.
func (c Change) AffectsRender() bool {
	return c.WrapText || c.Filter || c.Offset
}

// Diff compares two settings values.
func Diff(prev, cur Global) Change {
	return Change{
		Previous: prev,
		Current:  cur,
		Token:    prev.AccessToken != cur.AccessToken,
		WrapText: prev.WrapText != cur.WrapText,
		Filter:   prev.FilterState != cur.FilterState,
		Offset:   prev.Offset != cur.Offset,
	}
}

// Store persists Global and announces changes. Subscribers are called in
// registration order, once per Set or external edit that changes at least one
// field.
type Store interface {
	Get(ctx context.Context) (Global, error)
	Set(ctx context.Context, g Global) error
	Subscribe(fn func(ctx context.Context, change Change))
}

// Apply sets one field from a key=value pair as typed on the command line.
func Apply(g Global, key, value string) (Global, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "access_token", "accesstoken", "token":
		g.AccessToken = strings.TrimSpace(value)
	case "wrap_text", "wraptext", "wrap":
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return g, fmt.Errorf("wrap_text: %w", err)
		}
		g.WrapText = b
	case "filter_state", "filterstate", "filter":
		f, err := ParseFilter(value)
		if err != nil {
			return g, err
		}
		g.FilterState = f
		g.Offset = 0
	case "offset":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return g, fmt.Errorf("offset must be a non-negative integer, got %q", value)
		}
		g.Offset = n
	default:
		return g, fmt.Errorf("unknown setting %q", key)
	}
	return g, nil
}
