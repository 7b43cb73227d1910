package settings

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFilterState_NextWrapsAround(t *testing.T) {
	want := []FilterState{ShowPullRequests, ShowIssues, ShowCodeReviews, ShowAll}
	f := ShowAll
	for i, w := range want {
		f = f.Next()
		if f != w {
			t.Fatalf("step %d: Next() = %v, want %v", i, f, w)
		}
	}
	if got := FilterState(42).Next(); got != ShowPullRequests {
		t.Fatalf("out-of-range Next() = %v, want pull_requests", got)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    FilterState
		wantErr bool
	}{
		{"all", ShowAll, false},
		{"Pull_Requests", ShowPullRequests, false},
		{"2", ShowIssues, false},
		{" code_reviews ", ShowCodeReviews, false},
		{"4", ShowAll, true},
		{"everything", ShowAll, true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseFilter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDiff_ReportsExactlyChangedFields(t *testing.T) {
	base := Global{AccessToken: "a", WrapText: false, FilterState: ShowAll, Offset: 5}

	tests := []struct {
		name   string
		mutate func(*Global)
		want   Change
	}{
		{"none", func(g *Global) {}, Change{}},
		{"token", func(g *Global) { g.AccessToken = "b" }, Change{Token: true}},
		{"wrap", func(g *Global) { g.WrapText = true }, Change{WrapText: true}},
		{"filter and offset", func(g *Global) { g.FilterState = ShowIssues; g.Offset = 0 }, Change{Filter: true, Offset: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := base
			tt.mutate(&cur)
			got := Diff(base, cur)
			if got.Token != tt.want.Token || got.WrapText != tt.want.WrapText ||
				got.Filter != tt.want.Filter || got.Offset != tt.want.Offset {
				t.Fatalf("Diff = %+v, want %+v", got, tt.want)
			}
			if got.Previous != base || got.Current != cur {
				t.Fatalf("Diff did not carry values")
			}
		})
	}
}

func TestApply(t *testing.T) {
	g := Global{Offset: 10}

	g, err := Apply(g, "filter", "issues")
	if err != nil {
		t.Fatalf("Apply filter: %v", err)
	}
	if g.FilterState != ShowIssues || g.Offset != 0 {
		t.Fatalf("after filter: %+v, want issues with offset reset", g)
	}
	if g, err = Apply(g, "wrap_text", "true"); err != nil || !g.WrapText {
		t.Fatalf("Apply wrap_text: %+v, %v", g, err)
	}
	if _, err = Apply(g, "offset", "-1"); err == nil {
		t.Fatalf("Apply accepted negative offset")
	}
	if _, err = Apply(g, "colour", "red"); err == nil {
		t.Fatalf("Apply accepted unknown key")
	}
}

func TestGlobal_Redacted(t *testing.T) {
	g := Global{AccessToken: "ghp_abcdefghijklmnop"}
	if got := g.Redacted().AccessToken; got != "****mnop" {
		t.Fatalf("Redacted token = %q", got)
	}
	if got := (Global{AccessToken: "short"}).Redacted().AccessToken; got != "****" {
		t.Fatalf("Redacted short token = %q", got)
	}
}

func TestMemory_NotifiesInOrderOnlyOnChange(t *testing.T) {
	m := NewMemory(Global{})
	var calls []string
	m.Subscribe(func(ctx context.Context, c Change) { calls = append(calls, "first") })
	m.Subscribe(func(ctx context.Context, c Change) {
		if !c.Offset || c.Current.Offset != 3 {
			t.Errorf("change = %+v, want offset 3", c)
		}
		calls = append(calls, "second")
	})

	ctx := context.Background()
	if err := m.Set(ctx, Global{Offset: 3}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, Global{Offset: 3}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if strings.Join(calls, ",") != "first,second" {
		t.Fatalf("calls = %v, want one ordered notification", calls)
	}

	got, _ := m.Get(ctx)
	if got.Offset != 3 {
		t.Fatalf("Get offset = %d, want 3", got.Offset)
	}
}

func TestMemory_SetNormalizes(t *testing.T) {
	m := NewMemory(Global{})
	_ = m.Set(context.Background(), Global{Offset: -4, FilterState: 9})
	got, _ := m.Get(context.Background())
	if got.Offset != 0 || got.FilterState != ShowAll {
		t.Fatalf("Get = %+v, want normalized", got)
	}
}

func TestFile_RoundTripTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")
	f, err := OpenFile(path, quietLogger())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	ctx := context.Background()
	if got, _ := f.Get(ctx); got != (Global{}) {
		t.Fatalf("missing file Get = %+v, want defaults", got)
	}

	want := Global{AccessToken: "tok", WrapText: true, FilterState: ShowCodeReviews, Offset: 10}
	if err := f.Set(ctx, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "access_token") || !strings.Contains(string(data), "filter_state = 3") {
		t.Fatalf("file content = %q, want toml keys", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}

	reopened, err := OpenFile(path, quietLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got, _ := reopened.Get(ctx); got != want {
		t.Fatalf("reopened Get = %+v, want %+v", got, want)
	}
}

func TestFile_ReadsJSONWithComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.jsonc")
	content := `{
		// Stream Deck style keys
		"accessToken": "tok",
		"wrapText": true,
		"filterState": 1,
		"offset": 5, // trailing comma next
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := OpenFile(path, quietLogger())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	got, _ := f.Get(context.Background())
	want := Global{AccessToken: "tok", WrapText: true, FilterState: ShowPullRequests, Offset: 5}
	if got != want {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}
}

func TestFile_UnparseableFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("access_token = [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := OpenFile(path, quietLogger())
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	if got, _ := f.Get(context.Background()); got != (Global{}) {
		t.Fatalf("Get = %+v, want defaults", got)
	}
}

func TestFile_WatchNotifiesOnExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	f, err := OpenFile(path, quietLogger())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	changes := make(chan Change, 8)
	f.Subscribe(func(ctx context.Context, c Change) { changes <- c })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// The watcher registers asynchronously; keep editing until it notices.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-changes:
			if !c.Token || c.Current.AccessToken != "external" {
				t.Fatalf("change = %+v, want token change to external", c)
			}
			got, _ := f.Get(context.Background())
			if got.AccessToken != "external" {
				t.Fatalf("Get token = %q, want external", got.AccessToken)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte("access_token = \"external\"\n"), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
		case <-deadline:
			t.Fatalf("no change notification after external edit")
		}
	}
}
