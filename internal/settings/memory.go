package settings

import (
	"context"
	"sync"
)

// Subscribers is an ordered list of change callbacks. Store implementations
// embed one; Notify skips empty changes.
type Subscribers struct {
	mu  sync.Mutex
	fns []func(context.Context, Change)
}

func (s *Subscribers) Add(fn func(context.Context, Change)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
}

func (s *Subscribers) Notify(ctx context.Context, change Change) {
	if !change.Any() {
		return
	}
	s.mu.Lock()
	fns := append([]func(context.Context, Change){}, s.fns...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ctx, change)
	}
}

// Memory is a Store with no backing file.
type Memory struct {
	mu   sync.Mutex
	cur  Global
	subs Subscribers
}

var _ Store = (*Memory)(nil)

// NewMemory returns a Memory store holding initial.
func NewMemory(initial Global) *Memory {
	return &Memory{cur: initial.Normalize()}
}

func (m *Memory) Get(ctx context.Context) (Global, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur, nil
}

func (m *Memory) Set(ctx context.Context, g Global) error {
	g = g.Normalize()
	m.mu.Lock()
	change := Diff(m.cur, g)
	m.cur = g
	m.mu.Unlock()
	m.subs.Notify(ctx, change)
	return nil
}

func (m *Memory) Subscribe(fn func(context.Context, Change)) {
	m.subs.Add(fn)
}
