// Package logtail reads the end of the ghdeck log file for the terminal deck
// footer.
//
// Read keeps a ring buffer of the last maxLines non-blank lines, so memory
// stays bounded by the footer height no matter how large the file grows. A
// file that does not exist yet reads as empty.
//
// The log file is written by slog's JSON handler (it is never a terminal), so
// Parse turns each record back into a compact line:
//
//	{"time":"2026-01-02T03:04:05Z","level":"WARN","msg":"category fetch failed","category":"assigned_issues"}
//	03:04:05 WARN category fetch failed category=assigned_issues
//
// Lines that are not JSON objects are passed through unchanged.
package logtail
