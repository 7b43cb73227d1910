package github

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"sync"
)

type etagEntry struct {
	etag   string
	body   []byte
	header http.Header
}

// etagTransport sends If-None-Match for GETs it has seen before and answers a
// 304 with the cached body as a 200. A 304 does not count against the rate
// limit, which matters for a client that repeats the same three searches every
// few seconds. Entries are bounded by the number of distinct URLs, which is
// small and fixed here.
type etagTransport struct {
	next   http.RoundTripper
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]etagEntry
}

func newETagTransport(next http.RoundTripper, logger *slog.Logger) *etagTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &etagTransport{next: next, logger: logger, entries: make(map[string]etagEntry)}
}

func (t *etagTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.next.RoundTrip(req)
	}
	key := req.URL.String()
	entry, cached := t.lookup(key)
	if cached {
		req = req.Clone(req.Context())
		req.Header.Set("If-None-Match", entry.etag)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified && cached {
		_ = resp.Body.Close()
		t.logger.Debug("github response not modified", "path", req.URL.Path)
		header := entry.header.Clone()
		for k, v := range resp.Header {
			header[k] = v
		}
		return &http.Response{
			Status:        "200 OK",
			StatusCode:    http.StatusOK,
			Proto:         resp.Proto,
			ProtoMajor:    resp.ProtoMajor,
			ProtoMinor:    resp.ProtoMinor,
			Header:        header,
			Body:          io.NopCloser(bytes.NewReader(entry.body)),
			ContentLength: int64(len(entry.body)),
			Request:       req,
		}, nil
	}

	etag := resp.Header.Get("ETag")
	if resp.StatusCode != http.StatusOK || etag == "" {
		return resp, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	t.store(key, etagEntry{etag: etag, body: body, header: resp.Header.Clone()})
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

func (t *etagTransport) lookup(key string) (etagEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[key]
	return entry, ok
}

func (t *etagTransport) store(key string, entry etagEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key] = entry
}
