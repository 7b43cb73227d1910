package deck

import (
	"context"
	"log/slog"
	"sync"
)

// Handler implements the behaviour of one Kind.
type Handler interface {
	KeyDown(ctx context.Context, b Button) error
	WillAppear(ctx context.Context, b Button) error
}

// Disappearer is implemented by handlers that care when a button leaves the
// deck.
type Disappearer interface {
	WillDisappear(ctx context.Context, b Button) error
}

// Dispatcher routes host events to the handler registered for the button's
// kind. Handler errors are logged; they never reach the host.
//
// Events are delivered one at a time, whichever goroutine raises them, so a
// handler's read-modify-write of the settings never interleaves with another.
type Dispatcher struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[Kind]Handler

	eventMu sync.Mutex
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger, handlers: make(map[Kind]Handler)}
}

// Register sets the handler for kind, replacing any previous one.
func (d *Dispatcher) Register(kind Kind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

func (d *Dispatcher) handler(kind Kind) Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handlers[kind]
}

// KeyDown delivers a key press.
func (d *Dispatcher) KeyDown(ctx context.Context, b Button) {
	h := d.handler(b.Kind)
	if h == nil {
		d.logger.Debug("key down for unregistered kind", "kind", string(b.Kind), "button", b.ID)
		return
	}
	d.eventMu.Lock()
	defer d.eventMu.Unlock()
	if err := h.KeyDown(ctx, b); err != nil {
		d.logger.Warn("key down failed", "kind", string(b.Kind), "button", b.ID, "error", err)
	}
}

// WillAppear delivers a button becoming visible.
func (d *Dispatcher) WillAppear(ctx context.Context, b Button) {
	h := d.handler(b.Kind)
	if h == nil {
		return
	}
	d.eventMu.Lock()
	defer d.eventMu.Unlock()
	if err := h.WillAppear(ctx, b); err != nil {
		d.logger.Warn("will appear failed", "kind", string(b.Kind), "button", b.ID, "error", err)
	}
}

// WillDisappear delivers a button leaving the deck.
func (d *Dispatcher) WillDisappear(ctx context.Context, b Button) {
	h, ok := d.handler(b.Kind).(Disappearer)
	if !ok {
		return
	}
	d.eventMu.Lock()
	defer d.eventMu.Unlock()
	if err := h.WillDisappear(ctx, b); err != nil {
		d.logger.Warn("will disappear failed", "kind", string(b.Kind), "button", b.ID, "error", err)
	}
}
