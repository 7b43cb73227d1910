package ui

import (
	"context"
	"log/slog"
	"sync"

	"github.com/five82/ghdeck/internal/config"
	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/icons"
)

// Face is what a key currently shows.
type Face struct {
	Glyph icons.Name
	Color string // icon fill, empty when no image is set
	Title string
}

// Host is the deck.Host of the terminal deck. Writes update the faces and
// signal Changes; the bubbletea program redraws from Face.
type Host struct {
	grid   [][]Cell
	opener func(url string) error
	logger *slog.Logger

	mu    sync.RWMutex
	faces map[string]Face

	changes chan struct{}
}

var _ deck.Host = (*Host)(nil)

// NewHost builds a host for the layout. opener defaults to the platform URL
// handler.
func NewHost(layout config.Deck, opener func(string) error, logger *slog.Logger) (*Host, error) {
	grid, err := ParseLayout(layout)
	if err != nil {
		return nil, err
	}
	if opener == nil {
		opener = OpenURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		grid:    grid,
		opener:  opener,
		logger:  logger,
		faces:   make(map[string]Face),
		changes: make(chan struct{}, 1),
	}, nil
}

// Grid returns the layout. Callers must not modify it.
func (h *Host) Grid() [][]Cell {
	return h.grid
}

// Changes receives a value after one or more writes.
func (h *Host) Changes() <-chan struct{} {
	return h.changes
}

// Face returns what button id shows.
func (h *Host) Face(id string) Face {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.faces[id]
}

func (h *Host) Buttons(kind deck.Kind) []deck.Button {
	var out []deck.Button
	for _, row := range h.grid {
		for _, cell := range row {
			if !cell.Empty && cell.Button.Kind == kind {
				out = append(out, cell.Button)
			}
		}
	}
	return out
}

// SetImage records which glyph image encodes. Images that are not one of the
// embedded icons are shown as a blank face.
func (h *Host) SetImage(ctx context.Context, id, image string) error {
	name, color, ok := icons.Identify(image)
	if !ok {
		h.logger.Debug("unrecognised key image", "button", id)
	}
	h.mu.Lock()
	f := h.faces[id]
	f.Glyph, f.Color = name, color
	h.faces[id] = f
	h.mu.Unlock()
	h.signal()
	return nil
}

func (h *Host) SetTitle(ctx context.Context, id, title string) error {
	h.mu.Lock()
	f := h.faces[id]
	f.Title = title
	h.faces[id] = f
	h.mu.Unlock()
	h.signal()
	return nil
}

// OpenURL hands url to the platform handler.
func (h *Host) OpenURL(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.opener(url)
}

func (h *Host) signal() {
	select {
	case h.changes <- struct{}{}:
	default:
	}
}
