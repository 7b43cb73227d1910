package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/ghdeck/internal/clock"
	"github.com/five82/ghdeck/internal/config"
	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/deck/decktest"
	"github.com/five82/ghdeck/internal/github"
	"github.com/five82/ghdeck/internal/settings"
)

type fakeFetcher struct {
	repo string
}

func (f *fakeFetcher) AuthenticatedUser(ctx context.Context) (*github.User, error) {
	return &github.User{Login: "octocat"}, nil
}

func (f *fakeFetcher) SearchIssues(ctx context.Context, opts github.SearchOptions) (*github.SearchResult, error) {
	issue := github.Issue{
		RepositoryURL: "https://api.github.com/repos/octocat/" + f.repo,
		UpdatedAt:     time.Unix(1700000000, 0),
	}
	switch {
	case strings.HasPrefix(opts.Query, "is:pr is:open author:"):
		issue.Number = 1
		issue.HTMLURL = "https://github.com/octocat/" + f.repo + "/pull/1"
	case strings.HasPrefix(opts.Query, "is:issue"):
		issue.Number = 2
		issue.HTMLURL = "https://github.com/octocat/" + f.repo + "/issues/2"
	default:
		return &github.SearchResult{}, nil
	}
	return &github.SearchResult{TotalCount: 1, Items: []github.Issue{issue}}, nil
}

type tokenLog struct {
	mu     sync.Mutex
	tokens []string
}

func (l *tokenLog) factory(token string) (github.Fetcher, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = append(l.tokens, token)
	return &fakeFetcher{repo: "repo-" + token}, nil
}

type coreFixture struct {
	core     *Core
	host     *decktest.Host
	settings *settings.Memory
	clock    *clock.Fake
	tokens   *tokenLog
}

func newCoreFixture(t *testing.T, g settings.Global) *coreFixture {
	t.Helper()
	f := &coreFixture{
		host:     decktest.New(decktest.Grid(5, 5)...),
		settings: settings.NewMemory(g),
		clock:    clock.NewFake(time.Unix(1700000000, 0)),
		tokens:   &tokenLog{},
	}
	cfg := config.Default()
	f.core = Wire(CoreOptions{
		Config:     cfg,
		Host:       f.host,
		Settings:   f.settings,
		Dispatcher: deck.NewDispatcher(quietLogger()),
		Clock:      f.clock,
		NewClient:  f.tokens.factory,
		Logger:     quietLogger(),
	})
	return f
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitTitle(t *testing.T, h *decktest.Host, id, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if h.Title(id) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("title of %s = %q, want %q", id, h.Title(id), want)
}

func TestCore_StartRendersFirstFetch(t *testing.T) {
	f := newCoreFixture(t, settings.Global{AccessToken: "a"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.core.Start(ctx)
	waitTitle(t, f.host, "m0", "repo-a\n#1")
	waitTitle(t, f.host, "m1", "repo-a\n#2")

	url, ok := f.core.Monitor.URL("m0")
	if !ok || url != "https://github.com/octocat/repo-a/pull/1" {
		t.Fatalf("URL(m0) = %q, %v", url, ok)
	}
}

func TestCore_TokenChangeRefetchesUnderNewCredential(t *testing.T) {
	f := newCoreFixture(t, settings.Global{AccessToken: "a"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.core.Start(ctx)
	waitTitle(t, f.host, "m0", "repo-a\n#1")

	g, _ := f.settings.Get(ctx)
	g.AccessToken = "b"
	if err := f.settings.Set(ctx, g); err != nil {
		t.Fatalf("Set: %v", err)
	}
	waitTitle(t, f.host, "m0", "repo-b\n#1")

	f.tokens.mu.Lock()
	defer f.tokens.mu.Unlock()
	if last := f.tokens.tokens[len(f.tokens.tokens)-1]; last != "b" {
		t.Fatalf("last client token = %q, want b", last)
	}
}

func TestCore_FilterChangeRerendersWithoutFetching(t *testing.T) {
	f := newCoreFixture(t, settings.Global{AccessToken: "a"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.core.Start(ctx)
	waitTitle(t, f.host, "m0", "repo-a\n#1")
	gen := f.core.Store.Snapshot(settings.ShowAll).Generation

	g, _ := f.settings.Get(ctx)
	g.FilterState = settings.ShowIssues
	if err := f.settings.Set(ctx, g); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Poll ticker plus the render window.
	f.clock.WaitForTimers(2)
	f.clock.Advance(200 * time.Millisecond)

	waitTitle(t, f.host, "m0", "repo-a\n#2")
	if f.host.Title("m1") != "" {
		t.Fatalf("m1 title = %q, want cleared", f.host.Title("m1"))
	}
	if got := f.core.Store.Snapshot(settings.ShowAll).Generation; got != gen {
		t.Fatalf("generation = %d, want %d (no refetch)", got, gen)
	}
}

func TestCore_NoTokenLeavesDeckEmpty(t *testing.T) {
	f := newCoreFixture(t, settings.Global{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.core.Start(ctx)
	deadline := time.Now().Add(5 * time.Second)
	for f.core.Store.Snapshot(settings.ShowAll).Generation == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := f.core.Store.ItemCount(settings.ShowAll); n != 0 {
		t.Fatalf("items = %d, want 0", n)
	}
	if f.host.Title("m0") != "" {
		t.Fatalf("m0 title = %q, want empty", f.host.Title("m0"))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLoad_AppliesOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, level, err := Load(Options{ConfigPath: "/nonexistent/config.toml", LogLevel: "debug", SettingsPath: "/tmp/s.toml"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if level != slog.LevelDebug || cfg.SettingsPath != "/tmp/s.toml" {
		t.Fatalf("level = %v settings = %q", level, cfg.SettingsPath)
	}
	if _, _, err := Load(Options{ConfigPath: "/nonexistent/config.toml", LogLevel: "loud"}); err == nil {
		t.Fatalf("Load accepted an unknown log level")
	}
}
