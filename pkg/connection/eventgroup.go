package connection

import (
	"context"
	"sync"
)

// Bits is a set of outcome flags.
type Bits uint32

// Outcome flags for a connection attempt.
const (
	BitConnected Bits = 1 << iota
	BitFailed
)

// EventGroup is a set of flags that goroutines can block on. Set wakes
// every waiter; Clear does not.
type EventGroup struct {
	mu      sync.Mutex
	bits    Bits
	changed chan struct{}
}

// NewEventGroup creates an EventGroup with all flags clear.
func NewEventGroup() *EventGroup {
	return &EventGroup{changed: make(chan struct{})}
}

// Set raises the given flags.
func (g *EventGroup) Set(b Bits) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bits |= b
	close(g.changed)
	g.changed = make(chan struct{})
}

// Clear lowers the given flags.
func (g *EventGroup) Clear(b Bits) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bits &^= b
}

// Get returns the current flags.
func (g *EventGroup) Get() Bits {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bits
}

// Wait blocks until any flag in mask is raised or ctx is done. It returns
// the full flag set observed at wake-up; flags are left as they are.
func (g *EventGroup) Wait(ctx context.Context, mask Bits) (Bits, error) {
	for {
		g.mu.Lock()
		if g.bits&mask != 0 {
			b := g.bits
			g.mu.Unlock()
			return b, nil
		}
		ch := g.changed
		g.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return g.Get(), ctx.Err()
		}
	}
}
