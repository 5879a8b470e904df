// Package txguard keeps the receiver quiet while the local IR transmitter is sending.
// An IR LED and receiver next to each other form a half-duplex link: without the
// guard the decoder would read back its own transmission.
package txguard

import (
	"errors"
	"sync"

	"github.com/womat/debug"
)

// ErrNotSupported is returned on systems without gpio memory.
var ErrNotSupported = errors.New("gpio not supported on this system")

// Switch is the receive path controlled by the guard.
type Switch interface {
	Enable()
	Disable()
}

// Guard disables the Switch while the transmitter is active.
type Guard struct {
	sw Switch

	mu sync.Mutex
	// active is the last seen transmitter state, nil before the first level was read.
	active *bool
}

func newGuard(sw Switch) *Guard {
	return &Guard{sw: sw}
}

// Set applies the transmitter state. Repeated states are ignored.
func (g *Guard) Set(active bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active != nil && *g.active == active {
		return
	}
	g.active = &active

	if active {
		debug.DebugLog.Print("transmitter active, receiver disabled")
		g.sw.Disable()
		return
	}

	debug.DebugLog.Print("transmitter idle, receiver enabled")
	g.sw.Enable()
}

// Active reports the last applied transmitter state.
func (g *Guard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.active != nil && *g.active
}
