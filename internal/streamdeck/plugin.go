package streamdeck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/settings"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

// Options configures Dial.
type Options struct {
	Args       LaunchArgs
	Dispatcher *deck.Dispatcher
	Dialer     *websocket.Dialer
	Logger     *slog.Logger
}

// Plugin is one connection to the Stream Deck application. It is the deck.Host
// for the physical device and the settings.Store backed by the plugin's global
// settings.
type Plugin struct {
	args       LaunchArgs
	dispatcher *deck.Dispatcher
	logger     *slog.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	display *deck.DedupDisplay

	mu      sync.RWMutex
	buttons map[string]deck.Button

	settingsMu sync.Mutex
	settings   settings.Global
	subs       settings.Subscribers
	loaded     chan struct{}
	loadOnce   sync.Once
}

var (
	_ deck.Host      = (*Plugin)(nil)
	_ settings.Store = (*Plugin)(nil)
)

// Dial connects to the Stream Deck application, registers the plugin and asks
// for the global settings. Events are not read until Run is called.
func Dial(ctx context.Context, opts Options) (*Plugin, error) {
	if err := opts.Args.Validate(); err != nil {
		return nil, err
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = deck.NewDispatcher(logger)
	}

	conn, _, err := dialer.DialContext(ctx, opts.Args.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect stream deck: %w", err)
	}

	p := &Plugin{
		args:       opts.Args,
		dispatcher: dispatcher,
		logger:     logger,
		conn:       conn,
		buttons:    make(map[string]deck.Button),
		settings:   settings.Global{}.Normalize(),
		loaded:     make(chan struct{}),
	}
	p.display = deck.NewDedupDisplay(socketDisplay{p})

	if err := p.write(registration{Event: opts.Args.RegisterEvent, UUID: opts.Args.PluginUUID}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("register plugin: %w", err)
	}
	if err := p.send(EventGetGlobalSettings, opts.Args.PluginUUID, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("request global settings: %w", err)
	}
	logger.Info("connected to stream deck", "port", opts.Args.Port)
	return p, nil
}

// Run reads events until ctx is cancelled or the connection drops. A
// cancelled context is a clean shutdown and returns nil.
func (p *Plugin) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read stream deck event: %w", err)
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			p.logger.Warn("malformed stream deck event", "error", err)
			continue
		}
		p.handle(ctx, msg)
	}
}

// Close closes the connection.
func (p *Plugin) Close() error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	return p.conn.Close()
}

// Loaded is closed once the first global settings have arrived.
func (p *Plugin) Loaded() <-chan struct{} {
	return p.loaded
}

func (p *Plugin) handle(ctx context.Context, msg inbound) {
	switch msg.Event {
	case EventKeyDown:
		b, err := msg.button()
		if err != nil {
			p.logger.Warn("malformed key down", "error", err)
			return
		}
		if known, ok := p.button(b.ID); ok {
			b = known
		}
		p.dispatcher.KeyDown(ctx, b)

	case EventWillAppear:
		b, err := msg.button()
		if err != nil {
			p.logger.Warn("malformed will appear", "error", err)
			return
		}
		p.mu.Lock()
		p.buttons[b.ID] = b
		p.mu.Unlock()
		p.display.Forget(b.ID)
		p.dispatcher.WillAppear(ctx, b)

	case EventWillDisappear:
		b, err := msg.button()
		if err != nil {
			p.logger.Warn("malformed will disappear", "error", err)
			return
		}
		p.mu.Lock()
		delete(p.buttons, b.ID)
		p.mu.Unlock()
		p.display.Forget(b.ID)
		p.dispatcher.WillDisappear(ctx, b)

	case EventDidReceiveGlobalSettings:
		g, err := decodeGlobal(msg.Payload)
		if err != nil {
			p.logger.Warn("malformed global settings", "error", err)
			return
		}
		p.settingsMu.Lock()
		change := settings.Diff(p.settings, g)
		p.settings = g
		p.settingsMu.Unlock()
		p.loadOnce.Do(func() { close(p.loaded) })
		p.subs.Notify(ctx, change)

	default:
		p.logger.Debug("ignoring stream deck event", "event", msg.Event)
	}
}

func decodeGlobal(payload json.RawMessage) (settings.Global, error) {
	var g settings.Global
	if len(payload) == 0 {
		return g.Normalize(), nil
	}
	var p globalSettingsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return g, err
	}
	if len(p.Settings) > 0 && string(p.Settings) != "null" {
		if err := json.Unmarshal(p.Settings, &g); err != nil {
			return g, err
		}
	}
	return g.Normalize(), nil
}

func (p *Plugin) button(id string) (deck.Button, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	b, ok := p.buttons[id]
	return b, ok
}

// Buttons returns the visible buttons of kind.
func (p *Plugin) Buttons(kind deck.Kind) []deck.Button {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []deck.Button
	for _, b := range p.buttons {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

func (p *Plugin) SetImage(ctx context.Context, id, image string) error {
	return p.display.SetImage(ctx, id, image)
}

func (p *Plugin) SetTitle(ctx context.Context, id, title string) error {
	return p.display.SetTitle(ctx, id, title)
}

// OpenURL asks the Stream Deck application to open url.
func (p *Plugin) OpenURL(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.send(EventOpenURL, "", urlPayload{URL: url})
}

// Get returns the last known global settings. Before the first
// didReceiveGlobalSettings this is the zero value.
func (p *Plugin) Get(ctx context.Context) (settings.Global, error) {
	p.settingsMu.Lock()
	defer p.settingsMu.Unlock()
	return p.settings, nil
}

// Set stores g as the plugin's global settings.
func (p *Plugin) Set(ctx context.Context, g settings.Global) error {
	g = g.Normalize()
	if err := p.send(EventSetGlobalSettings, p.args.PluginUUID, g); err != nil {
		return fmt.Errorf("save global settings: %w", err)
	}
	p.settingsMu.Lock()
	change := settings.Diff(p.settings, g)
	p.settings = g
	p.settingsMu.Unlock()
	p.subs.Notify(ctx, change)
	return nil
}

func (p *Plugin) Subscribe(fn func(context.Context, settings.Change)) {
	p.subs.Add(fn)
}

// LogMessage writes message to the Stream Deck application's plugin log.
func (p *Plugin) LogMessage(message string) error {
	return p.send(EventLogMessage, "", logPayload{Message: message})
}

func (p *Plugin) send(event, target string, payload any) error {
	return p.write(outbound{Event: event, Context: target, Payload: payload})
}

func (p *Plugin) write(v any) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := p.conn.WriteJSON(v); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return fmt.Errorf("connection closed: %w", err)
		}
		return err
	}
	return nil
}

// socketDisplay is the undeduplicated write path.
type socketDisplay struct {
	p *Plugin
}

func (d socketDisplay) SetImage(ctx context.Context, id, image string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.p.send(EventSetImage, id, imagePayload{Image: image, Target: targetBoth})
}

func (d socketDisplay) SetTitle(ctx context.Context, id, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.p.send(EventSetTitle, id, titlePayload{Title: title, Target: targetBoth})
}
