// Package source turns the GitHub issue search into the three fixed categories
// ghdeck displays: authored pull requests, assigned issues and requested reviews.
//
// A Source starts Uninitialized. Resolve asks GitHub who owns the configured
// token and moves it to Ready; SetCredential drops back to Uninitialized and
// bumps an epoch counter so callers can recognise results that were computed
// for a token that has since been replaced. Searches run with the username
// passed in, never with one cached inside the fetch path.
package source
