package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/five82/ghdeck/internal/clock"
	"github.com/five82/ghdeck/internal/config"
	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/settings"
	"github.com/five82/ghdeck/internal/state"
	"github.com/five82/ghdeck/internal/streamdeck"
	"github.com/five82/ghdeck/internal/ui"
)

// Options configure every ghdeck entry point.
type Options struct {
	ConfigPath   string
	LogLevel     string // overrides log_level from the config file
	SettingsPath string // overrides settings_path from the config file
	ThemeName    string
}

// ErrNoToken is returned by Snapshot when no access token is available.
var ErrNoToken = errors.New("no access token: pass --token or run `ghdeck settings set token=<token>`")

// Load reads the config file and applies the overrides in opts.
func Load(opts Options) (config.Config, slog.Level, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, slog.LevelInfo, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(opts.SettingsPath); v != "" {
		cfg.SettingsPath = v
	}
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, slog.LevelInfo, err
	}
	return cfg, level, nil
}

// RunTUI runs the terminal deck until the user quits or ctx is cancelled.
func RunTUI(ctx context.Context, opts Options) error {
	cfg, level, err := Load(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Stderr belongs to the terminal UI.
	logFile, err := openLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := NewLogger(logFile, level)

	store, err := settings.OpenFile(cfg.SettingsPath, logger)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	host, err := ui.NewHost(cfg.Deck, nil, logger)
	if err != nil {
		return fmt.Errorf("build deck: %w", err)
	}
	dispatcher := deck.NewDispatcher(logger)
	core := Wire(CoreOptions{
		Config:     cfg,
		Host:       host,
		Settings:   store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	go func() {
		if err := store.Watch(ctx); err != nil {
			logger.Warn("settings watcher stopped", "error", err)
		}
	}()
	core.Start(ctx)

	// Every key of the terminal deck is visible for the whole run.
	for _, row := range host.Grid() {
		for _, cell := range row {
			if !cell.Empty {
				dispatcher.WillAppear(ctx, cell.Button)
			}
		}
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		Host:       host,
		Dispatcher: dispatcher,
		Store:      core.Store,
		URLs:       core.Monitor,
		LogPath:    cfg.LogFile,
		ThemeName:  opts.ThemeName,
		Logger:     logger,
	})
}

// RunPlugin runs as a Stream Deck plugin until the application closes the
// connection or ctx is cancelled. Failing to connect is fatal.
func RunPlugin(ctx context.Context, opts Options, args streamdeck.LaunchArgs) error {
	cfg, level, err := Load(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The Stream Deck application discards plugin stderr.
	logFile, err := openLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	forward := streamdeck.NewLogHandler(newHandler(logFile, level), slog.LevelWarn)
	logger := slog.New(forward)

	if info, err := streamdeck.ParseInfo(args.Info); err != nil {
		logger.Debug("ignoring launch info", "error", err)
	} else {
		logger.Info("stream deck launch",
			"platform", info.Application.Platform,
			"version", info.Application.Version,
			"devices", len(info.Devices))
	}

	dispatcher := deck.NewDispatcher(logger)
	plugin, err := streamdeck.Dial(ctx, streamdeck.Options{
		Args:       args,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer plugin.Close()
	forward.Attach(plugin)

	core := Wire(CoreOptions{
		Config:     cfg,
		Host:       plugin,
		Settings:   plugin,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	core.Start(ctx)
	return plugin.Run(ctx)
}

// OpenSettings opens the settings file named by the config.
func OpenSettings(opts Options, logger *slog.Logger) (*settings.File, error) {
	cfg, _, err := Load(opts)
	if err != nil {
		return nil, err
	}
	store, err := settings.OpenFile(cfg.SettingsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	return store, nil
}

// Snapshot runs a single fetch cycle. An empty token falls back to the one in
// the settings file. Logs go to w.
func Snapshot(ctx context.Context, opts Options, token string, w io.Writer) (state.Snapshot, error) {
	cfg, level, err := Load(opts)
	if err != nil {
		return state.Snapshot{}, err
	}
	if w == nil {
		w = os.Stderr
	}
	logger := NewLogger(w, level)

	if strings.TrimSpace(token) == "" {
		store, err := settings.OpenFile(cfg.SettingsPath, logger)
		if err != nil {
			return state.Snapshot{}, fmt.Errorf("open settings: %w", err)
		}
		g, err := store.Get(ctx)
		if err != nil {
			return state.Snapshot{}, fmt.Errorf("read settings: %w", err)
		}
		token = g.AccessToken
	}
	if strings.TrimSpace(token) == "" {
		return state.Snapshot{}, ErrNoToken
	}

	clk := clock.Real()
	store := state.NewStore(state.Options{
		Source: NewSource(cfg, logger),
		Clock:  clk,
		Logger: logger,
	})
	store.InvalidateCredential(token)
	store.Refresh(ctx)

	snap := store.Snapshot(settings.ShowAll)
	if snap.LastError != nil {
		return snap, snap.LastError
	}
	return snap, nil
}
