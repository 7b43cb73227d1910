// Package github adapts go-github to the two calls ghdeck polls.
//
// # Endpoints
//
//   - GET /user: resolve the login that owns the access token
//   - GET /search/issues: one page of issue or pull request search results
//
// # Usage
//
//	client, err := github.NewClient(github.Config{Token: token})
//	if err != nil {
//		return err
//	}
//	user, err := client.AuthenticatedUser(ctx)
//	...
//	res, err := client.SearchIssues(ctx, github.SearchOptions{
//		Query: "is:pr is:open author:" + user.Login,
//		Sort:  "updated",
//		Order: "desc",
//	})
//
// Results are flattened into plain structs so callers and their fakes never
// deal with go-github's pointer fields.
//
// # Requests
//
// A non-default BaseURL is treated as a GitHub Enterprise API root. GET
// responses with an ETag are remembered by the transport so that repeated polls
// send If-None-Match and a 304 is answered from memory.
//
// # Errors
//
// Errors are go-github's (*ErrorResponse, *RateLimitError,
// *AbuseRateLimitError) wrapped with the operation; use IsUnauthorized,
// IsNotFound and IsRateLimited rather than comparing status codes. go-github
// tracks the core and search budgets separately and, while one is spent,
// returns *RateLimitError without touching the network. Nothing here sleeps or
// retries; callers poll again on their own schedule.
package github
