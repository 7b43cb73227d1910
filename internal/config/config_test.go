package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.PollInterval != 15*time.Second {
		t.Fatalf("PollInterval = %v, want 15s", cfg.PollInterval)
	}
	wantSettings, err := expandPath(defaultSettingsPath)
	if err != nil {
		t.Fatalf("expandPath(defaultSettingsPath) returned error: %v", err)
	}
	if cfg.SettingsPath != wantSettings {
		t.Fatalf("SettingsPath = %q, want %q", cfg.SettingsPath, wantSettings)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if err := cfg.Deck.Validate(); err != nil {
		t.Fatalf("default deck invalid: %v", err)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  https://ghe.example.com/api/v3  "
poll_seconds = 30
search_page_size = 20
settings_path = "  ~/ghdeck/settings.jsonc  "
log_level = "DEBUG"

[deck]
rows = 2
columns = 3
layout = ["MMM", "<P>"]
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://ghe.example.com/api/v3" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.PollInterval != 30*time.Second || cfg.SearchPageSize != 20 {
		t.Fatalf("poll=%v page=%d", cfg.PollInterval, cfg.SearchPageSize)
	}
	if cfg.SettingsPath != filepath.Join(home, "ghdeck", "settings.jsonc") {
		t.Fatalf("SettingsPath = %q", cfg.SettingsPath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Deck.Rows != 2 || cfg.Deck.Columns != 3 || cfg.Deck.Layout[1] != "<P>" {
		t.Fatalf("Deck = %+v", cfg.Deck)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "   "
poll_seconds = 0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.PollInterval != defaultPollSeconds*time.Second {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if len(cfg.Deck.Layout) != 3 {
		t.Fatalf("Deck = %+v, want default", cfg.Deck)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative poll", "poll_seconds = -1"},
		{"page size too large", "search_page_size = 101"},
		{"layout row count", "[deck]\nrows = 2\ncolumns = 2\nlayout = [\"MM\"]"},
		{"layout width", "[deck]\nrows = 1\ncolumns = 2\nlayout = [\"MMM\"]"},
		{"unknown cell", "[deck]\nrows = 1\ncolumns = 2\nlayout = [\"MX\"]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("Load accepted %q", tt.body)
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
