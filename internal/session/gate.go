package session

import (
	"context"
	"sync"
)

// Gate signals that persisted session state has finished loading.
// It fires at most once and never reverts. Consumers that arrive after
// hydration see a closed channel and proceed immediately.
type Gate struct {
	once sync.Once
	done chan struct{}
}

func NewGate() *Gate {
	return &Gate{done: make(chan struct{})}
}

func (g *Gate) open() {
	g.once.Do(func() { close(g.done) })
}

// Done is closed once hydration completes.
func (g *Gate) Done() <-chan struct{} { return g.done }

// Ready reports whether hydration has completed.
func (g *Gate) Ready() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Wait blocks until hydration completes or ctx ends.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
