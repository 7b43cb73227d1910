// Package decktest provides an in-memory deck.Host for tests.
package decktest

import (
	"context"
	"strconv"
	"sync"

	"github.com/five82/ghdeck/internal/deck"
)

// Write is one recorded SetImage or SetTitle call.
type Write struct {
	ID    string
	Image bool // false for SetTitle
	Value string
}

// Host records every write and URL open.
type Host struct {
	mu      sync.Mutex
	buttons []deck.Button
	images  map[string]string
	titles  map[string]string
	writes  []Write
	opened  []string
}

// New returns a Host showing buttons.
func New(buttons ...deck.Button) *Host {
	return &Host{
		buttons: append([]deck.Button(nil), buttons...),
		images:  make(map[string]string),
		titles:  make(map[string]string),
	}
}

// Grid returns monitor buttons m0..m(n-1) laid out row-major with the given
// number of columns.
func Grid(n, columns int) []deck.Button {
	out := make([]deck.Button, n)
	for i := range out {
		out[i] = deck.Button{
			ID:          "m" + strconv.Itoa(i),
			Kind:        deck.KindMonitor,
			Coordinates: &deck.Coordinates{Row: i / columns, Column: i % columns},
		}
	}
	return out
}

// SetButtons replaces the visible buttons.
func (h *Host) SetButtons(buttons ...deck.Button) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buttons = append([]deck.Button(nil), buttons...)
}

func (h *Host) Buttons(kind deck.Kind) []deck.Button {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []deck.Button
	for _, b := range h.buttons {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

func (h *Host) SetImage(ctx context.Context, id, image string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.images[id] = image
	h.writes = append(h.writes, Write{ID: id, Image: true, Value: image})
	return nil
}

func (h *Host) SetTitle(ctx context.Context, id, title string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.titles[id] = title
	h.writes = append(h.writes, Write{ID: id, Value: title})
	return nil
}

func (h *Host) OpenURL(ctx context.Context, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened = append(h.opened, url)
	return nil
}

// Image returns the last image written to id.
func (h *Host) Image(id string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.images[id]
}

// Title returns the last title written to id.
func (h *Host) Title(id string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.titles[id]
}

// Writes returns every write so far.
func (h *Host) Writes() []Write {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Write(nil), h.writes...)
}

// ResetWrites clears the write log but keeps the last values.
func (h *Host) ResetWrites() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = nil
}

// Opened returns every URL passed to OpenURL.
func (h *Host) Opened() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.opened...)
}
