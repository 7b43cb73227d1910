package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v58/github"
)

// Fetcher is the part of the GitHub API the remote data source needs.
// It is implemented by *Client and replaced by fakes in tests.
type Fetcher interface {
	AuthenticatedUser(ctx context.Context) (*User, error)
	SearchIssues(ctx context.Context, opts SearchOptions) (*SearchResult, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

const (
	defaultBaseURL   = "https://api.github.com/"
	defaultUserAgent = "ghdeck/0.1"
	requestTimeout   = 10 * time.Second

	// maxResponseSize bounds how much of a response body is cached. Search pages
	// are a few hundred KB at most.
	maxResponseSize int64 = 32 << 20
)

// Config configures a Client.
type Config struct {
	// BaseURL defaults to https://api.github.com. GitHub Enterprise servers use
	// https://HOST/api/v3.
	BaseURL string

	// Token is a classic or fine-grained personal access token. Required.
	Token string

	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client wraps go-github with a single static token and an ETag cache.
type Client struct {
	api    *gh.Client
	logger *slog.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("github: no access token configured")
	}
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{Timeout: requestTimeout}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		httpClient = &copied
	}
	httpClient.Transport = newETagTransport(httpClient.Transport, logger)

	api := gh.NewClient(httpClient).WithAuthToken(token)
	if base != defaultBaseURL {
		api, err = api.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("parse api url %q: %w", cfg.BaseURL, err)
		}
	}
	api.UserAgent = defaultUserAgent
	if cfg.UserAgent != "" {
		api.UserAgent = cfg.UserAgent
	}

	return &Client{api: api, logger: logger}, nil
}

// AuthenticatedUser returns the user the token belongs to (GET /user).
func (c *Client) AuthenticatedUser(ctx context.Context) (*User, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	user, _, err := c.api.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("get authenticated user: %w", err)
	}
	if user.GetLogin() == "" {
		return nil, fmt.Errorf("get authenticated user: empty login in response")
	}
	return &User{Login: user.GetLogin(), ID: user.GetID(), Name: user.GetName()}, nil
}

// SearchIssues runs one issue search. Only the first page is fetched.
func (c *Client) SearchIssues(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("search issues: query is required")
	}

	res, _, err := c.api.Search.Issues(ctx, opts.Query, &gh.SearchOptions{
		Sort:        opts.Sort,
		Order:       opts.Order,
		ListOptions: gh.ListOptions{PerPage: opts.PerPage},
	})
	if err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	if res.GetIncompleteResults() {
		c.logger.Debug("github search returned incomplete results", "query", opts.Query)
	}

	out := &SearchResult{
		TotalCount:        res.GetTotal(),
		IncompleteResults: res.GetIncompleteResults(),
		Items:             make([]Issue, 0, len(res.Issues)),
	}
	for _, issue := range res.Issues {
		out.Items = append(out.Items, fromAPIIssue(issue))
	}
	return out, nil
}

func fromAPIIssue(issue *gh.Issue) Issue {
	out := Issue{
		Number:        issue.GetNumber(),
		Title:         issue.GetTitle(),
		State:         issue.GetState(),
		HTMLURL:       issue.GetHTMLURL(),
		RepositoryURL: issue.GetRepositoryURL(),
		UpdatedAt:     issue.GetUpdatedAt().Time,
	}
	if issue.PullRequestLinks != nil {
		out.PullRequest = &PullRequest{HTMLURL: issue.PullRequestLinks.GetHTMLURL()}
	}
	return out
}

// normalizeBaseURL returns the API root with a trailing slash, which is the
// form go-github compares and resolves against.
func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultBaseURL, nil
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("parse api url %q: unsupported scheme %q", raw, u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
