package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/five82/ghdeck/internal/github"
)

type fakeFetcher struct {
	mu       sync.Mutex
	login    string
	userErr  error
	userHits int
	failing  map[string]bool
	queries  []github.SearchOptions
	items    map[string][]github.Issue
}

func (f *fakeFetcher) AuthenticatedUser(ctx context.Context) (*github.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userHits++
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &github.User{Login: f.login}, nil
}

func (f *fakeFetcher) SearchIssues(ctx context.Context, opts github.SearchOptions) (*github.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, opts)
	if f.failing[opts.Query] {
		return nil, errors.New("boom")
	}
	return &github.SearchResult{Items: f.items[opts.Query]}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSource(f *fakeFetcher) *Source {
	src := New(Options{
		NewClient: func(token string) (github.Fetcher, error) { return f, nil },
		PerPage:   20,
		Logger:    quietLogger(),
	})
	src.SetCredential("token")
	return src
}

func TestQuery(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{AuthoredPullRequests, "is:pr is:open author:octocat"},
		{AssignedIssues, "is:issue is:open assignee:octocat"},
		{RequestedReviews, "is:pr is:open review-requested:octocat"},
	}
	for _, tt := range tests {
		if got := Query(tt.category, "octocat"); got != tt.want {
			t.Errorf("Query(%s) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestSource_ResolveTransitionsToReady(t *testing.T) {
	f := &fakeFetcher{login: "octocat"}
	src := newTestSource(f)

	if src.State() != Uninitialized {
		t.Fatalf("state = %v, want uninitialized", src.State())
	}
	login, _, err := src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if login != "octocat" || src.State() != Ready {
		t.Fatalf("login=%q state=%v, want octocat/ready", login, src.State())
	}

	// Cached until the credential changes.
	_, _, _ = src.Resolve(context.Background())
	if f.userHits != 1 {
		t.Fatalf("user lookups = %d, want 1", f.userHits)
	}

	before := src.Epoch()
	src.SetCredential("rotated")
	if src.State() != Uninitialized || src.Username() != "" {
		t.Fatalf("credential rotation kept username %q", src.Username())
	}
	if src.Epoch() == before {
		t.Fatalf("epoch did not change on rotation")
	}
	if _, _, err := src.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve after rotation returned error: %v", err)
	}
	if f.userHits != 2 {
		t.Fatalf("user lookups = %d, want 2 after rotation", f.userHits)
	}
}

func TestSource_ResolveWithoutCredential(t *testing.T) {
	src := New(Options{Logger: quietLogger()})
	_, _, err := src.Resolve(context.Background())
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("Resolve error = %v, want ErrNoCredential", err)
	}

	src = New(Options{
		NewClient: func(string) (github.Fetcher, error) { return nil, errors.New("bad") },
		Logger:    quietLogger(),
	})
	src.SetCredential("x")
	if _, _, err := src.Resolve(context.Background()); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("Resolve error = %v, want ErrNoCredential for rejected token", err)
	}
}

func TestSource_FetchCategoryShortCircuitsWithoutUsername(t *testing.T) {
	f := &fakeFetcher{login: "octocat"}
	src := newTestSource(f)

	items, err := src.FetchCategory(context.Background(), AssignedIssues, "")
	if err != nil || items != nil {
		t.Fatalf("FetchCategory = %v, %v; want nil, nil", items, err)
	}
	if len(f.queries) != 0 {
		t.Fatalf("queries = %d, want 0", len(f.queries))
	}
}

func TestSource_FetchAllIsolatesFailures(t *testing.T) {
	f := &fakeFetcher{
		login:   "octocat",
		failing: map[string]bool{Query(AssignedIssues, "octocat"): true},
		items: map[string][]github.Issue{
			Query(AuthoredPullRequests, "octocat"): {
				{Number: 2, HTMLURL: "https://github.com/o/a/pull/2", RepositoryURL: "https://api.github.com/repos/o/a"},
				{Number: 1, HTMLURL: "https://github.com/o/b/pull/1", RepositoryURL: "https://api.github.com/repos/o/b"},
			},
			Query(RequestedReviews, "octocat"): {
				{Number: 9, HTMLURL: "https://github.com/o/c/pull/9", RepositoryURL: "https://api.github.com/repos/o/c"},
			},
		},
	}
	src := newTestSource(f)

	got := src.FetchAll(context.Background(), "octocat")
	if len(f.queries) != 3 {
		t.Fatalf("queries = %d, want exactly 3", len(f.queries))
	}
	for _, q := range f.queries {
		if q.Sort != "updated" || q.Order != "desc" || q.PerPage != 20 {
			t.Fatalf("query options = %#v", q)
		}
	}

	authored := got[AuthoredPullRequests]
	if len(authored) != 2 || authored[0].Number != 2 || authored[0].Repository != "a" {
		t.Fatalf("authored = %#v, want remote order preserved", authored)
	}
	if len(got[AssignedIssues]) != 0 {
		t.Fatalf("assigned = %#v, want empty after failure", got[AssignedIssues])
	}
	if len(got[RequestedReviews]) != 1 || got[RequestedReviews][0].URL != "https://github.com/o/c/pull/9" {
		t.Fatalf("reviews = %#v", got[RequestedReviews])
	}
}
