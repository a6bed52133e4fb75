package session

import (
	"sync"
	"time"
)

const DefaultLogoutGrace = 2 * time.Second

// LogoutGuard lets exactly one forced logout run at a time. After a run it
// stays busy for the cooldown so that a burst of rejected responses collapses
// into a single logout.
type LogoutGuard struct {
	mu       sync.Mutex
	busy     bool
	cooldown time.Duration

	afterFunc func(time.Duration, func())
}

func NewLogoutGuard(cooldown time.Duration) *LogoutGuard {
	if cooldown < 0 {
		cooldown = 0
	}

	return &LogoutGuard{
		cooldown: cooldown,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Do runs fn if the guard is idle and reports whether it did. The guard clears
// itself cooldown after entry, even when fn panics.
func (g *LogoutGuard) Do(fn func()) bool {
	g.mu.Lock()
	if g.busy {
		g.mu.Unlock()
		return false
	}
	g.busy = true
	g.mu.Unlock()

	g.afterFunc(g.cooldown, g.release)

	fn()
	return true
}

func (g *LogoutGuard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

func (g *LogoutGuard) release() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}
