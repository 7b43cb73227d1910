package deck

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
)

type written struct {
	image, title       uint64
	hasImage, hasTitle bool
}

// DedupDisplay drops writes that would repeat what a button already shows. The
// monitor redraws every button on every pass; most passes change nothing.
type DedupDisplay struct {
	next Display

	mu    sync.Mutex
	state map[string]written
}

// NewDedupDisplay wraps next.
func NewDedupDisplay(next Display) *DedupDisplay {
	return &DedupDisplay{next: next, state: make(map[string]written)}
}

func (d *DedupDisplay) SetImage(ctx context.Context, id, image string) error {
	sum := xxhash.Sum64String(image)
	d.mu.Lock()
	w := d.state[id]
	if w.hasImage && w.image == sum {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	if err := d.next.SetImage(ctx, id, image); err != nil {
		return err
	}

	d.mu.Lock()
	w = d.state[id]
	w.image, w.hasImage = sum, true
	d.state[id] = w
	d.mu.Unlock()
	return nil
}

func (d *DedupDisplay) SetTitle(ctx context.Context, id, title string) error {
	sum := xxhash.Sum64String(title)
	d.mu.Lock()
	w := d.state[id]
	if w.hasTitle && w.title == sum {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	if err := d.next.SetTitle(ctx, id, title); err != nil {
		return err
	}

	d.mu.Lock()
	w = d.state[id]
	w.title, w.hasTitle = sum, true
	d.state[id] = w
	d.mu.Unlock()
	return nil
}

// Forget drops what is known about id. Hosts call it when a button (re)appears,
// since the device does not keep a key's image across its appearances.
func (d *DedupDisplay) Forget(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.state, id)
}
