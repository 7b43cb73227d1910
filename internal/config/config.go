package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds ghdeck's process settings. User state that buttons change at
// runtime (token, filter, offset, wrapping) lives in the settings store instead.
type Config struct {
	APIURL         string
	PollInterval   time.Duration
	SearchPageSize int // zero leaves the API default
	SettingsPath   string
	LogFile        string
	LogLevel       string
	Deck           Deck
}

// Deck describes the terminal deck grid. Each Layout row is one string with
// one character per column:
//
//	M monitor   < previous page   > next page
//	F filter    P page number     . empty
type Deck struct {
	Rows    int
	Columns int
	Layout  []string
}

// LayoutCells lists the characters accepted in Deck.Layout.
const LayoutCells = "M<>FP."

const (
	defaultConfigPath   = "~/.config/ghdeck/config.toml"
	defaultAPIURL       = "https://api.github.com"
	defaultPollSeconds  = 15
	defaultSettingsPath = "~/.config/ghdeck/settings.toml"
	defaultLogFile      = "~/.local/state/ghdeck/ghdeck.log"
	defaultLogLevel     = "info"
)

// DefaultDeck is a 3x5 grid: ten monitor keys over a control row.
func DefaultDeck() Deck {
	return Deck{
		Rows:    3,
		Columns: 5,
		Layout:  []string{"MMMMM", "MMMMM", "<.PF>"},
	}
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:       defaultAPIURL,
		PollInterval: defaultPollSeconds * time.Second,
		SettingsPath: mustExpand(defaultSettingsPath),
		LogFile:      mustExpand(defaultLogFile),
		LogLevel:     defaultLogLevel,
		Deck:         DefaultDeck(),
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		PollSeconds    int    `toml:"poll_seconds"`
		SearchPageSize int    `toml:"search_page_size"`
		SettingsPath   string `toml:"settings_path"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
		Deck           struct {
			Rows    int      `toml:"rows"`
			Columns int      `toml:"columns"`
			Layout  []string `toml:"layout"`
		} `toml:"deck"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.PollSeconds < 0 {
		return Config{}, fmt.Errorf("parse config: poll_seconds must not be negative")
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	if raw.SearchPageSize < 0 || raw.SearchPageSize > 100 {
		return Config{}, fmt.Errorf("parse config: search_page_size must be between 0 and 100")
	}
	cfg.SearchPageSize = raw.SearchPageSize
	if v := strings.TrimSpace(raw.SettingsPath); v != "" {
		cfg.SettingsPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if raw.Deck.Rows != 0 || raw.Deck.Columns != 0 || len(raw.Deck.Layout) != 0 {
		d := Deck{Rows: raw.Deck.Rows, Columns: raw.Deck.Columns, Layout: raw.Deck.Layout}
		if err := d.Validate(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.Deck = d
	}

	return cfg, nil
}

// Validate checks that Layout matches Rows x Columns and uses known cells.
func (d Deck) Validate() error {
	if d.Rows <= 0 || d.Columns <= 0 {
		return fmt.Errorf("deck rows and columns must be positive")
	}
	if len(d.Layout) != d.Rows {
		return fmt.Errorf("deck layout has %d rows, want %d", len(d.Layout), d.Rows)
	}
	for i, row := range d.Layout {
		if len(row) != d.Columns {
			return fmt.Errorf("deck layout row %d has %d columns, want %d", i+1, len(row), d.Columns)
		}
		for _, c := range row {
			if !strings.ContainsRune(LayoutCells, c) {
				return fmt.Errorf("deck layout row %d: unknown cell %q", i+1, c)
			}
		}
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
