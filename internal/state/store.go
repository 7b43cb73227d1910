package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/ghdeck/internal/clock"
	"github.com/five82/ghdeck/internal/settings"
	"github.com/five82/ghdeck/internal/source"
)

// DefaultPollInterval is how often the store refetches.
const DefaultPollInterval = 15 * time.Second

// Source is what the store needs from the remote data source. *source.Source
// implements it.
type Source interface {
	SetCredential(token string)
	Epoch() uint64
	Resolve(ctx context.Context) (username string, epoch uint64, err error)
	FetchAll(ctx context.Context, username string) map[source.Category][]source.Item
}

var _ Source = (*source.Source)(nil)

// Observer is called after every refresh and every coalesced render request,
// with the current unfiltered snapshot.
type Observer func(ctx context.Context, snap Snapshot)

// Options configure a Store.
type Options struct {
	Source       Source
	Clock        clock.Clock
	Interval     time.Duration // zero uses DefaultPollInterval
	RenderWindow time.Duration // zero uses DefaultRenderWindow
	Logger       *slog.Logger
}

// Store owns the single cached snapshot, refreshes it on a timer, and fans it
// out to observers.
type Store struct {
	src      Source
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger
	render   *Coalescer

	startMu sync.Mutex
	started bool

	mu         sync.RWMutex
	snapshot   Snapshot
	lastGen    uint64 // last generation handed out
	appliedGen uint64 // generation of snapshot

	obsMu     sync.Mutex
	observers []Observer
}

// NewStore returns a Store holding an empty snapshot. Nothing is fetched until
// Start or Refresh.
func NewStore(opts Options) *Store {
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		src:      opts.Source,
		clock:    clk,
		interval: interval,
		logger:   logger,
	}
	s.render = NewCoalescer(clk, opts.RenderWindow, s.notify)
	return s
}

// Start fetches once immediately and then every interval until ctx is done.
// Calling it again is a no-op. It returns without waiting for the first fetch.
func (s *Store) Start(ctx context.Context) {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ticker := s.clock.NewTicker(s.interval)
	s.logger.Info("polling github", "interval", s.interval.String())
	go func() {
		defer ticker.Stop()
		for {
			s.Refresh(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Refresh runs one fetch cycle and, if its result is still current, publishes
// it and notifies observers before returning.
//
// Overlapping refreshes resolve as last-to-start wins: a result is dropped if a
// refresh that started later has already been published, or if the credential
// changed while it was in flight.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.lastGen++
	gen := s.lastGen
	s.mu.Unlock()

	var next Snapshot
	username, epoch, err := s.src.Resolve(ctx)
	switch {
	case err != nil:
		s.logger.Warn("cannot resolve github user; showing no items", "error", err)
		next = NewSnapshot(nil)
		next.LastError = err
	case username == "":
		// Credential rotated during resolution. The result is stale either way.
		next = NewSnapshot(nil)
	default:
		next = NewSnapshot(s.src.FetchAll(ctx, username))
	}
	next.Generation = gen
	next.FetchedAt = s.clock.Now()

	s.mu.Lock()
	if gen < s.appliedGen || epoch != s.src.Epoch() {
		applied := s.appliedGen
		s.mu.Unlock()
		s.logger.Debug("dropping stale refresh", "generation", gen, "applied", applied)
		return
	}
	if next.LastError != nil {
		next.ConsecutiveFailures = s.snapshot.ConsecutiveFailures + 1
	}
	s.snapshot = next
	s.appliedGen = gen
	s.mu.Unlock()

	s.logger.Info("fetched github items",
		"authored_pull_requests", len(next.items[source.AuthoredPullRequests]),
		"assigned_issues", len(next.items[source.AssignedIssues]),
		"requested_reviews", len(next.items[source.RequestedReviews]),
	)
	s.render.Run(ctx)
}

// Snapshot returns the current snapshot narrowed by filter.
func (s *Store) Snapshot(filter settings.FilterState) Snapshot {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	return snap.Filter(filter)
}

// ItemCount is the number of items visible under filter.
func (s *Store) ItemCount(filter settings.FilterState) int {
	return s.Snapshot(filter).Count()
}

// Observe appends fn to the observer list. Observers run one at a time in
// registration order; each returns before the next starts.
func (s *Store) Observe(fn Observer) {
	if fn == nil {
		return
	}
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

// InvalidateCredential switches to token. The username is resolved again on the
// next refresh, which the caller must trigger.
func (s *Store) InvalidateCredential(token string) {
	s.src.SetCredential(token)
	s.logger.Info("github credential replaced")
}

// RequestRender re-runs the observers against the current snapshot without
// fetching. Requests within the render window collapse into one pass.
func (s *Store) RequestRender() {
	s.render.Trigger()
}

func (s *Store) notify(ctx context.Context) {
	s.obsMu.Lock()
	observers := append([]Observer(nil), s.observers...)
	s.obsMu.Unlock()

	snap := s.Snapshot(settings.ShowAll)
	for _, fn := range observers {
		fn(ctx, snap)
	}
}
