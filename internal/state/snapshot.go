package state

import (
	"time"

	"github.com/five82/ghdeck/internal/settings"
	"github.com/five82/ghdeck/internal/source"
)

// Snapshot is one complete fetch cycle. It is never modified after the Store
// publishes it; slices returned from it are copies.
type Snapshot struct {
	items [len(source.Categories)][]source.Item

	FetchedAt  time.Time
	Generation uint64 // refresh that produced it; zero for the initial empty snapshot

	// LastError is set when the cycle could not resolve the user, in which case
	// every category is empty. ConsecutiveFailures counts such cycles in a row.
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when several cycles in a row produced nothing.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Entry is one item together with the category it came from.
type Entry struct {
	Category source.Category
	Item     source.Item
}

// Items returns the items of one category in remote order.
func (s Snapshot) Items(c source.Category) []source.Item {
	if int(c) < 0 || int(c) >= len(s.items) {
		return nil
	}
	return cloneItems(s.items[c])
}

// Count is the number of items across all categories.
func (s Snapshot) Count() int {
	n := 0
	for _, items := range s.items {
		n += len(items)
	}
	return n
}

// Entries concatenates the categories in render order.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, 0, s.Count())
	for _, c := range source.Categories {
		for _, item := range s.items[c] {
			out = append(out, Entry{Category: c, Item: item})
		}
	}
	return out
}

// Filter returns a view in which every category other than the one selected by
// f is empty. ShowAll returns s unchanged.
func (s Snapshot) Filter(f settings.FilterState) Snapshot {
	c, ok := FilterCategory(f)
	if !ok {
		return s
	}
	view := s
	view.items = [len(source.Categories)][]source.Item{}
	view.items[c] = s.items[c]
	return view
}

// FilterCategory maps a filter to the single category it selects. ok is false
// for ShowAll.
func FilterCategory(f settings.FilterState) (source.Category, bool) {
	switch f {
	case settings.ShowPullRequests:
		return source.AuthoredPullRequests, true
	case settings.ShowIssues:
		return source.AssignedIssues, true
	case settings.ShowCodeReviews:
		return source.RequestedReviews, true
	default:
		return 0, false
	}
}

// NewSnapshot builds a Snapshot from per-category results. Missing categories
// are empty.
func NewSnapshot(results map[source.Category][]source.Item) Snapshot {
	var snap Snapshot
	for _, c := range source.Categories {
		snap.items[c] = cloneItems(results[c])
	}
	return snap
}

func cloneItems(items []source.Item) []source.Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]source.Item, len(items))
	copy(dup, items)
	return dup
}
