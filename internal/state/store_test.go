package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/ghdeck/internal/clock"
	"github.com/five82/ghdeck/internal/settings"
	"github.com/five82/ghdeck/internal/source"
)

type fakeSource struct {
	mu         sync.Mutex
	epoch      uint64
	login      string
	resolveErr error
	resolves   int
	fetches    int
	results    map[source.Category][]source.Item
	// fetchHook, when set, runs inside FetchAll before results are returned.
	fetchHook func(call int)
}

func (f *fakeSource) SetCredential(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.epoch++
	f.login = token
}

func (f *fakeSource) Epoch() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.epoch
}

func (f *fakeSource) Resolve(ctx context.Context) (string, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	if f.resolveErr != nil {
		return "", f.epoch, f.resolveErr
	}
	return f.login, f.epoch, nil
}

func (f *fakeSource) FetchAll(ctx context.Context, username string) map[source.Category][]source.Item {
	f.mu.Lock()
	f.fetches++
	call := f.fetches
	hook := f.fetchHook
	results := f.results
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	out := make(map[source.Category][]source.Item)
	for c, items := range results {
		for _, it := range items {
			it.Title = username
			out[c] = append(out[c], it)
		}
	}
	return out
}

func items(repo string, n int) []source.Item {
	out := make([]source.Item, n)
	for i := range out {
		out[i] = source.Item{Repository: repo, Number: i + 1}
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(src Source, clk clock.Clock) *Store {
	return NewStore(Options{Source: src, Clock: clk, Interval: 15 * time.Second, Logger: quietLogger()})
}

func TestSnapshot_FilteredCountsPartitionTheWhole(t *testing.T) {
	snap := NewSnapshot(map[source.Category][]source.Item{
		source.AuthoredPullRequests: items("a", 3),
		source.AssignedIssues:       items("b", 0),
		source.RequestedReviews:     items("c", 4),
	})

	sum := 0
	for _, f := range []settings.FilterState{settings.ShowPullRequests, settings.ShowIssues, settings.ShowCodeReviews} {
		view := snap.Filter(f)
		nonEmpty := 0
		for _, c := range source.Categories {
			if len(view.Items(c)) > 0 {
				nonEmpty++
			}
		}
		if nonEmpty > 1 {
			t.Fatalf("filter %v has %d non-empty categories", f, nonEmpty)
		}
		sum += view.Count()
	}
	if all := snap.Filter(settings.ShowAll).Count(); all != sum || all != 7 {
		t.Fatalf("ShowAll count = %d, sum of filters = %d, want 7", all, sum)
	}
}

func TestSnapshot_EntriesConcatenateInCategoryOrder(t *testing.T) {
	snap := NewSnapshot(map[source.Category][]source.Item{
		source.RequestedReviews:     {{Repository: "c", Number: 3}},
		source.AuthoredPullRequests: {{Repository: "a", Number: 1}, {Repository: "b", Number: 2}},
	})
	var got []string
	for _, e := range snap.Entries() {
		got = append(got, e.Item.Repository)
	}
	if strings.Join(got, ",") != "a,b,c" {
		t.Fatalf("entries = %v, want a,b,c", got)
	}
}

func TestSnapshot_ItemsAreCopies(t *testing.T) {
	snap := NewSnapshot(map[source.Category][]source.Item{source.AssignedIssues: items("x", 1)})
	got := snap.Items(source.AssignedIssues)
	got[0].Number = 999
	if snap.Items(source.AssignedIssues)[0].Number != 1 {
		t.Fatalf("Items should return a copy")
	}
}

func TestStore_RefreshPublishesAndNotifiesInOrder(t *testing.T) {
	src := &fakeSource{login: "octocat", results: map[source.Category][]source.Item{
		source.AuthoredPullRequests: items("a", 2),
		source.RequestedReviews:     items("c", 1),
	}}
	store := newTestStore(src, clock.NewFake(epoch))

	var order []string
	store.Observe(func(ctx context.Context, snap Snapshot) {
		if snap.Count() != 3 {
			t.Errorf("first observer saw %d items, want 3", snap.Count())
		}
		order = append(order, "first")
	})
	store.Observe(func(ctx context.Context, snap Snapshot) { order = append(order, "second") })

	store.Refresh(context.Background())

	if strings.Join(order, ",") != "first,second" {
		t.Fatalf("observer order = %v", order)
	}
	if got := store.ItemCount(settings.ShowAll); got != 3 {
		t.Fatalf("ItemCount(all) = %d, want 3", got)
	}
	if got := store.ItemCount(settings.ShowPullRequests); got != 2 {
		t.Fatalf("ItemCount(prs) = %d, want 2", got)
	}
	if got := store.ItemCount(settings.ShowIssues); got != 0 {
		t.Fatalf("ItemCount(issues) = %d, want 0", got)
	}
	snap := store.Snapshot(settings.ShowCodeReviews)
	if len(snap.Items(source.AuthoredPullRequests)) != 0 || len(snap.Items(source.RequestedReviews)) != 1 {
		t.Fatalf("filtered snapshot leaked other categories")
	}
	if snap.Generation != 1 || !snap.FetchedAt.Equal(epoch) {
		t.Fatalf("generation=%d fetched=%v", snap.Generation, snap.FetchedAt)
	}
}

func TestStore_UsernameFailureYieldsEmptySnapshot(t *testing.T) {
	src := &fakeSource{login: "octocat", results: map[source.Category][]source.Item{
		source.AuthoredPullRequests: items("a", 2),
	}}
	store := newTestStore(src, clock.NewFake(epoch))
	store.Refresh(context.Background())

	src.mu.Lock()
	src.resolveErr = errors.New("401 bad credentials")
	src.mu.Unlock()

	notified := 0
	store.Observe(func(ctx context.Context, snap Snapshot) {
		notified++
		if snap.Count() != 0 {
			t.Errorf("observer saw %d items, want 0", snap.Count())
		}
	})
	store.Refresh(context.Background())
	store.Refresh(context.Background())

	if notified != 2 {
		t.Fatalf("notified = %d, want empty snapshots propagated", notified)
	}
	snap := store.Snapshot(settings.ShowAll)
	if snap.LastError == nil || !snap.IsOffline() {
		t.Fatalf("snapshot error=%v failures=%d", snap.LastError, snap.ConsecutiveFailures)
	}
	if src.fetches != 1 {
		t.Fatalf("fetches = %d, want no category fetch without a username", src.fetches)
	}
}

func TestStore_StartIsIdempotentAndFetchesImmediately(t *testing.T) {
	fake := clock.NewFake(epoch)
	src := &fakeSource{login: "octocat"}
	store := newTestStore(src, fake)

	notified := make(chan struct{}, 16)
	store.Observe(func(ctx context.Context, snap Snapshot) { notified <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.Start(ctx)
	store.Start(ctx)

	waitNotified(t, notified)
	if fake.Pending() != 1 {
		t.Fatalf("pending timers = %d, want a single poll ticker", fake.Pending())
	}

	fake.Advance(15 * time.Second)
	waitNotified(t, notified)

	src.mu.Lock()
	resolves := src.resolves
	src.mu.Unlock()
	if resolves != 2 {
		t.Fatalf("refreshes = %d, want 2 (immediate + one tick)", resolves)
	}
}

func waitNotified(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for observer")
	}
}

func TestStore_OverlappingRefreshLastToStartWins(t *testing.T) {
	tests := []struct {
		name        string
		releaseLate bool // release the first refresh after the second
	}{
		{"newer finishes first", true},
		{"older finishes first", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gates := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
			entered := make(chan int, 2)
			src := &fakeSource{login: "octocat", results: map[source.Category][]source.Item{
				source.AssignedIssues: items("x", 1),
			}}
			src.fetchHook = func(call int) {
				entered <- call
				<-gates[call]
			}
			store := newTestStore(src, clock.NewFake(epoch))

			var published []uint64
			var mu sync.Mutex
			store.Observe(func(ctx context.Context, snap Snapshot) {
				mu.Lock()
				published = append(published, snap.Generation)
				mu.Unlock()
			})

			var wg sync.WaitGroup
			wg.Add(2)
			go func() { defer wg.Done(); store.Refresh(context.Background()) }()
			<-entered
			go func() { defer wg.Done(); store.Refresh(context.Background()) }()
			<-entered

			if tt.releaseLate {
				close(gates[2])
				waitGen(t, store, 2)
				close(gates[1])
			} else {
				close(gates[1])
				waitGen(t, store, 1)
				close(gates[2])
			}
			wg.Wait()

			if got := store.Snapshot(settings.ShowAll).Generation; got != 2 {
				t.Fatalf("final generation = %d, want 2", got)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, g := range published {
				if tt.releaseLate && g == 1 {
					t.Fatalf("stale generation 1 was published after 2: %v", published)
				}
			}
		})
	}
}

func waitGen(t *testing.T, store *Store, gen uint64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for store.Snapshot(settings.ShowAll).Generation != gen {
		if time.Now().After(deadline) {
			t.Fatalf("generation %d never published", gen)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStore_CredentialRotationDropsInFlightResultAndReResolves(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	src := &fakeSource{login: "old-user", results: map[source.Category][]source.Item{
		source.AuthoredPullRequests: items("a", 1),
	}}
	src.fetchHook = func(call int) {
		if call == 1 {
			entered <- struct{}{}
			<-gate
		}
	}
	store := newTestStore(src, clock.NewFake(epoch))

	done := make(chan struct{})
	go func() {
		store.Refresh(context.Background())
		close(done)
	}()
	<-entered

	store.InvalidateCredential("new-user")
	close(gate)
	<-done

	if got := store.ItemCount(settings.ShowAll); got != 0 {
		t.Fatalf("ItemCount = %d, want result for the old credential dropped", got)
	}

	store.Refresh(context.Background())
	if src.resolves != 2 {
		t.Fatalf("resolves = %d, want username re-resolved after rotation", src.resolves)
	}
	got := store.Snapshot(settings.ShowAll).Items(source.AuthoredPullRequests)
	if len(got) != 1 || got[0].Title != "new-user" {
		t.Fatalf("items = %#v, want fetched as new-user", got)
	}
}

func TestStore_InvalidateCredentialDoesNotRefresh(t *testing.T) {
	src := &fakeSource{login: "octocat"}
	store := newTestStore(src, clock.NewFake(epoch))
	store.InvalidateCredential("other")
	if src.resolves != 0 || src.fetches != 0 {
		t.Fatalf("InvalidateCredential fetched: resolves=%d fetches=%d", src.resolves, src.fetches)
	}
}

func TestStore_RequestRenderCoalescesWithoutFetching(t *testing.T) {
	fake := clock.NewFake(epoch)
	src := &fakeSource{login: "octocat"}
	store := newTestStore(src, fake)

	passes := 0
	store.Observe(func(ctx context.Context, snap Snapshot) { passes++ })

	store.RequestRender()
	store.RequestRender()
	fake.Advance(DefaultRenderWindow)
	if passes != 1 {
		t.Fatalf("passes = %d, want 1", passes)
	}
	if src.fetches != 0 || src.resolves != 0 {
		t.Fatalf("RequestRender fetched")
	}

	// A refresh inside the window absorbs the pending request.
	store.RequestRender()
	store.Refresh(context.Background())
	fake.Advance(time.Second)
	if passes != 2 {
		t.Fatalf("passes = %d, want 2", passes)
	}
}
