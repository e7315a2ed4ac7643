package chat

import (
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
)

// ErrStreamActive is returned when a submission arrives while a response
// stream is still being consumed
var ErrStreamActive = goerr.New("a response is already being generated")

// Guard serializes chat submissions. It replaces the global streaming flag of
// the original design with an object owned by the session, so independent
// call sites cannot race on one shared boolean.
type Guard struct {
	active atomic.Bool
}

// Acquire marks a stream as in progress and returns its release function.
// Fails with ErrStreamActive if another stream is outstanding. The release
// function must be called regardless of how the stream ends.
func (g *Guard) Acquire() (func(), error) {
	if !g.active.CompareAndSwap(false, true) {
		return nil, ErrStreamActive
	}
	return func() {
		g.active.Store(false)
	}, nil
}

// Active reports whether a stream is currently being consumed
func (g *Guard) Active() bool {
	return g.active.Load()
}
