package github

import (
	"strings"
	"time"
)

// User is the subset of GET /user that ghdeck reads.
type User struct {
	Login string
	ID    int64
	Name  string
}

// SearchOptions are the query parameters for GET /search/issues.
type SearchOptions struct {
	Query   string
	Sort    string // "updated", "created", "comments"
	Order   string // "asc" or "desc"
	PerPage int    // zero leaves the server default (30)
}

// SearchResult is one page of issue search results.
type SearchResult struct {
	TotalCount        int
	IncompleteResults bool
	Items             []Issue
}

// Issue is an issue or pull request as returned by the search endpoint,
// flattened out of go-github's pointer fields.
type Issue struct {
	Number        int
	Title         string
	State         string
	HTMLURL       string
	RepositoryURL string
	UpdatedAt     time.Time
	PullRequest   *PullRequest
}

// PullRequest is present on search hits that are pull requests.
type PullRequest struct {
	HTMLURL string
}

// IsPullRequest reports whether the hit is a pull request rather than an issue.
func (i Issue) IsPullRequest() bool {
	return i.PullRequest != nil
}

// RepositoryName returns the last path segment of RepositoryURL, e.g. "ghdeck"
// for https://api.github.com/repos/five82/ghdeck.
func (i Issue) RepositoryName() string {
	trimmed := strings.TrimRight(i.RepositoryURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
