package github

import (
	"errors"
	"net/http"

	gh "github.com/google/go-github/v58/github"
)

// IsUnauthorized reports whether err is a 401, typically a revoked or mistyped token.
func IsUnauthorized(err error) bool {
	return statusCode(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	return statusCode(err) == http.StatusNotFound
}

// IsRateLimited reports whether err came from a primary or secondary rate
// limit. go-github also returns *RateLimitError without touching the network
// while a known limit is spent, so this covers the short-circuit too.
func IsRateLimited(err error) bool {
	var limitErr *gh.RateLimitError
	if errors.As(err, &limitErr) {
		return true
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	return statusCode(err) == http.StatusTooManyRequests
}

func statusCode(err error) int {
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode
	}
	return 0
}
