package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
)

const defaultPath = "~/.config/ghdeck/settings.toml"

// DefaultPath returns the default settings file path (unexpanded).
func DefaultPath() string {
	return defaultPath
}

// File is a Store backed by a TOML file, or JSON with comments when the path
// ends in .json or .jsonc. Edits made by other processes are picked up by Watch.
type File struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	cur  Global
	subs Subscribers
}

var _ Store = (*File)(nil)

// OpenFile loads the settings at path. A missing file yields defaults. A file
// that exists but cannot be parsed also yields defaults, with a warning, so a
// typo never keeps the deck from starting.
func OpenFile(path string, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}
	f := &File{path: resolved, logger: logger}

	g, err := f.read()
	if err != nil {
		logger.Warn("settings file unreadable, using defaults", "path", resolved, "error", err)
		g = Global{}
	}
	f.cur = g
	return f, nil
}

// Path returns the resolved file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(ctx context.Context) (Global, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cur, nil
}

// Set writes g to disk and notifies subscribers of the fields that changed.
func (f *File) Set(ctx context.Context, g Global) error {
	g = g.Normalize()
	data, err := f.encode(g)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	// The token is a secret.
	if err := writeFileAtomic(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	f.mu.Lock()
	change := Diff(f.cur, g)
	f.cur = g
	f.mu.Unlock()

	f.subs.Notify(ctx, change)
	return nil
}

func (f *File) Subscribe(fn func(context.Context, Change)) {
	f.subs.Add(fn)
}

// Watch reloads the file whenever it changes on disk until ctx is done.
// The parent directory is watched rather than the file so that editors that
// replace the file by rename are seen too.
func (f *File) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			f.reload(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("settings watcher error", "error", err)
		}
	}
}

func (f *File) reload(ctx context.Context) {
	g, err := f.read()
	if err != nil {
		// Usually a half-written file; the next write event carries the rest.
		f.logger.Debug("settings reload skipped", "error", err)
		return
	}

	f.mu.Lock()
	change := Diff(f.cur, g)
	f.cur = g
	f.mu.Unlock()

	if change.Any() {
		f.logger.Info("settings changed on disk",
			"token", change.Token,
			"wrap_text", change.WrapText,
			"filter", change.Filter,
			"offset", change.Offset,
		)
	}
	f.subs.Notify(ctx, change)
}

func (f *File) isJSON() bool {
	ext := strings.ToLower(filepath.Ext(f.path))
	return ext == ".json" || ext == ".jsonc"
}

func (f *File) read() (Global, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Global{}, nil
		}
		return Global{}, fmt.Errorf("read settings: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Global{}, nil
	}

	var g Global
	if f.isJSON() {
		if err := json.Unmarshal(jsonc.ToJSON(data), &g); err != nil {
			return Global{}, fmt.Errorf("parse settings: %w", err)
		}
	} else if err := toml.Unmarshal(data, &g); err != nil {
		return Global{}, fmt.Errorf("parse settings: %w", err)
	}
	return g.Normalize(), nil
}

func (f *File) encode(g Global) ([]byte, error) {
	if f.isJSON() {
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal settings: %w", err)
		}
		return append(data, '\n'), nil
	}
	data, err := toml.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPath)
	}
	return expandPath(path)
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
