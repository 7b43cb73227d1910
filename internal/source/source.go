package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/five82/ghdeck/internal/github"
)

// Category is one of the three fixed partitions of the polled data. The
// declaration order is render order.
type Category int

const (
	AuthoredPullRequests Category = iota
	AssignedIssues
	RequestedReviews
)

// Categories lists every category in render order.
var Categories = [...]Category{AuthoredPullRequests, AssignedIssues, RequestedReviews}

func (c Category) String() string {
	switch c {
	case AuthoredPullRequests:
		return "authored_pull_requests"
	case AssignedIssues:
		return "assigned_issues"
	case RequestedReviews:
		return "requested_reviews"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

const usernamePlaceholder = "{USERNAME}"

var queryTemplates = map[Category]string{
	AuthoredPullRequests: "is:pr is:open author:{USERNAME}",
	AssignedIssues:       "is:issue is:open assignee:{USERNAME}",
	RequestedReviews:     "is:pr is:open review-requested:{USERNAME}",
}

// Query returns the search query for c on behalf of username.
func Query(c Category, username string) string {
	return strings.ReplaceAll(queryTemplates[c], usernamePlaceholder, username)
}

// Item is one issue or pull request as displayed on a button.
type Item struct {
	Repository string    `json:"repository" yaml:"repository"`
	Number     int       `json:"number" yaml:"number"`
	URL        string    `json:"url" yaml:"url"`
	Title      string    `json:"title" yaml:"title"`
	State      string    `json:"state" yaml:"state"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// State is the credential state of a Source.
type State int

const (
	// Uninitialized means no credential is configured or the username has not
	// been resolved for the current one.
	Uninitialized State = iota
	// Ready means the username for the current credential is known.
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "uninitialized"
}

// ErrNoCredential is returned by Resolve when no access token is configured.
var ErrNoCredential = errors.New("no access token configured")

// ClientFactory builds an API client for a token.
type ClientFactory func(token string) (github.Fetcher, error)

// Options configure a Source.
type Options struct {
	NewClient ClientFactory
	// PerPage caps each search. Zero leaves the API default.
	PerPage int
	Logger  *slog.Logger
}

// Source wraps the three category searches and the "who am I" call. The
// credential it runs under can be rotated at any time with SetCredential.
type Source struct {
	newClient ClientFactory
	perPage   int
	logger    *slog.Logger

	mu       sync.Mutex
	client   github.Fetcher
	username string
	epoch    uint64
}

// New returns a Source with no credential.
func New(opts Options) *Source {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		newClient: opts.NewClient,
		perPage:   opts.PerPage,
		logger:    logger,
	}
}

// SetCredential replaces the API client and forgets the resolved username,
// returning the source to Uninitialized. Every call bumps the credential epoch,
// even if the token is unchanged or invalid.
func (s *Source) SetCredential(token string) {
	var client github.Fetcher
	token = strings.TrimSpace(token)
	if token != "" && s.newClient != nil {
		c, err := s.newClient(token)
		if err != nil {
			s.logger.Warn("github client rejected credential", "error", err)
		} else {
			client = c
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
	s.username = ""
	s.epoch++
}

// State reports whether the username for the current credential is known.
func (s *Source) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil && s.username != "" {
		return Ready
	}
	return Uninitialized
}

// Epoch identifies the current credential. Results computed under an older
// epoch describe a credential that is no longer configured.
func (s *Source) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Username returns the resolved login, or "" while Uninitialized.
func (s *Source) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Resolve moves the source to Ready by asking the API who owns the token. It is
// a no-op when already Ready. The returned epoch is the one the username was
// resolved for.
func (s *Source) Resolve(ctx context.Context) (string, uint64, error) {
	s.mu.Lock()
	client, username, epoch := s.client, s.username, s.epoch
	s.mu.Unlock()

	if client == nil {
		return "", epoch, ErrNoCredential
	}
	if username != "" {
		return username, epoch, nil
	}

	user, err := client.AuthenticatedUser(ctx)
	if err != nil {
		return "", epoch, fmt.Errorf("resolve username: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// The credential rotated while the call was in flight.
		return "", epoch, nil
	}
	s.username = user.Login
	s.logger.Info("resolved github user", "login", user.Login)
	return user.Login, epoch, nil
}

// FetchCategory runs the search for one category. An empty username
// short-circuits to an empty result without contacting the API.
func (s *Source) FetchCategory(ctx context.Context, c Category, username string) ([]Item, error) {
	if username == "" {
		return nil, nil
	}
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return nil, nil
	}

	res, err := client.SearchIssues(ctx, github.SearchOptions{
		Query:   Query(c, username),
		Sort:    "updated",
		Order:   "desc",
		PerPage: s.perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c, err)
	}

	items := make([]Item, 0, len(res.Items))
	for _, issue := range res.Items {
		items = append(items, Item{
			Repository: issue.RepositoryName(),
			Number:     issue.Number,
			URL:        issue.HTMLURL,
			Title:      issue.Title,
			State:      issue.State,
			UpdatedAt:  issue.UpdatedAt,
		})
	}
	return items, nil
}

// FetchAll issues the three category searches concurrently and waits for all of
// them. A failed search contributes an empty slice and is logged; the others are
// unaffected.
func (s *Source) FetchAll(ctx context.Context, username string) map[Category][]Item {
	results := make([][]Item, len(Categories))
	var wg sync.WaitGroup
	for i, c := range Categories {
		wg.Add(1)
		go func(i int, c Category) {
			defer wg.Done()
			items, err := s.FetchCategory(ctx, c, username)
			if err != nil {
				s.logger.Warn("category fetch failed", "category", c.String(), "error", err)
				return
			}
			results[i] = items
		}(i, c)
	}
	wg.Wait()

	out := make(map[Category][]Item, len(Categories))
	for i, c := range Categories {
		out[c] = results[i]
	}
	return out
}
