package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/five82/ghdeck/internal/actions"
	"github.com/five82/ghdeck/internal/clock"
	"github.com/five82/ghdeck/internal/config"
	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/github"
	"github.com/five82/ghdeck/internal/settings"
	"github.com/five82/ghdeck/internal/source"
	"github.com/five82/ghdeck/internal/state"
)

// Core is everything that does not depend on which deck is attached: the
// GitHub source, the cached snapshot and the controls bound to a host.
type Core struct {
	Store   *state.Store
	Source  *source.Source
	Monitor *actions.Monitor

	settings settings.Store
	logger   *slog.Logger

	mu     sync.Mutex
	runCtx context.Context
}

// CoreOptions configure Wire.
type CoreOptions struct {
	Config     config.Config
	Host       deck.Host
	Settings   settings.Store
	Dispatcher *deck.Dispatcher
	Clock      clock.Clock
	// NewClient overrides how API clients are built; tests point it at a fake.
	NewClient source.ClientFactory
	Logger    *slog.Logger
}

// NewSource builds the GitHub source for cfg.
func NewSource(cfg config.Config, logger *slog.Logger) *source.Source {
	return source.New(source.Options{
		NewClient: clientFactory(cfg, logger),
		PerPage:   cfg.SearchPageSize,
		Logger:    logger,
	})
}

func clientFactory(cfg config.Config, logger *slog.Logger) source.ClientFactory {
	return func(token string) (github.Fetcher, error) {
		return github.NewClient(github.Config{
			BaseURL: cfg.APIURL,
			Token:   token,
			Logger:  logger,
		})
	}
}

// Wire connects the source, the store, the controls and the settings store.
// Nothing runs until Start.
func Wire(opts CoreOptions) *Core {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}

	var src *source.Source
	if opts.NewClient != nil {
		src = source.New(source.Options{NewClient: opts.NewClient, PerPage: opts.Config.SearchPageSize, Logger: logger})
	} else {
		src = NewSource(opts.Config, logger)
	}

	store := state.NewStore(state.Options{
		Source:   src,
		Clock:    clk,
		Interval: opts.Config.PollInterval,
		Logger:   logger,
	})
	monitor := actions.Register(opts.Dispatcher, store, actions.Deps{
		Host:     opts.Host,
		Cache:    store,
		Settings: opts.Settings,
		Logger:   logger,
	})

	c := &Core{
		Store:    store,
		Source:   src,
		Monitor:  monitor,
		settings: opts.Settings,
		logger:   logger,
		runCtx:   context.Background(),
	}
	opts.Settings.Subscribe(c.onSettingsChange)
	return c
}

// Start loads the current token and starts polling.
func (c *Core) Start(ctx context.Context) {
	c.mu.Lock()
	c.runCtx = ctx
	c.mu.Unlock()

	g, err := c.settings.Get(ctx)
	if err != nil {
		c.logger.Warn("read settings failed", "error", err)
	}
	if g.AccessToken == "" {
		c.logger.Info("no access token configured; the deck stays empty until one is set")
	}
	c.Store.InvalidateCredential(g.AccessToken)
	c.Store.Start(ctx)
}

func (c *Core) onSettingsChange(_ context.Context, change settings.Change) {
	if change.Token {
		c.logger.Info("access token changed", "token", change.Current.Redacted().AccessToken)
		c.Store.InvalidateCredential(change.Current.AccessToken)
		c.mu.Lock()
		ctx := c.runCtx
		c.mu.Unlock()
		// The notifier may hold a short-lived context; refresh on the run context.
		go c.Store.Refresh(ctx)
		return
	}
	if change.AffectsRender() {
		c.Store.RequestRender()
	}
}
