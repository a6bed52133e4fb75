package handshake

import (
	"context"
	"log/slog"
	"sync"
)

const wildcardOrigin = "*"

// Router stands in for the opener window's message port. Messages are only
// delivered when addressed to exactly the router's origin.
type Router struct {
	origin string
	logger *slog.Logger

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*Pending
}

func NewRouter(origin string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		origin:  origin,
		logger:  logger,
		pending: make(map[uint64]*Pending),
	}
}

func (r *Router) Origin() string {
	return r.origin
}

// Listen registers a single use listener for a message from expectedOrigin.
// Success messages must also carry expectedState, anything else is dropped
// without resolving the listener.
func (r *Router) Listen(expectedOrigin, expectedState string) *Pending {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p := &Pending{
		id:     r.nextID,
		router: r,
		origin: expectedOrigin,
		state:  expectedState,
		done:   make(chan struct{}),
	}
	r.pending[p.id] = p

	return p
}

// Post delivers env to every matching listener and reports how many it resolved.
func (r *Router) Post(env Envelope) int {
	if env.TargetOrigin == "" || env.TargetOrigin == wildcardOrigin || env.TargetOrigin != r.origin {
		r.logger.Warn("Rejected handshake message with unexpected target origin",
			"target_origin", env.TargetOrigin,
			"origin", env.Origin)
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	resolved := 0
	for id, p := range r.pending {
		if !p.accepts(env) {
			continue
		}
		delete(r.pending, id)
		p.resolve(env.Message)
		resolved++
	}

	if resolved == 0 {
		r.logger.Debug("Discarded handshake message with no matching listener",
			"origin", env.Origin,
			"type", env.Message.Type)
	}

	return resolved
}

// Listeners returns the number of registered listeners.
func (r *Router) Listeners() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Router) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
}

// Pending is one sign in attempt waiting for its message.
type Pending struct {
	id     uint64
	router *Router
	origin string
	state  string

	once sync.Once
	done chan struct{}
	msg  Message
}

func (p *Pending) accepts(env Envelope) bool {
	if env.Origin != p.origin {
		return false
	}

	if env.Message.IsSuccess() {
		return env.Message.State == p.state
	}

	// errors without a state cannot be correlated, so they belong to whoever is waiting
	return env.Message.State == "" || env.Message.State == p.state
}

func (p *Pending) resolve(msg Message) {
	p.once.Do(func() {
		p.msg = msg
		close(p.done)
	})
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the message arrives or ctx ends.
func (p *Pending) Wait(ctx context.Context) (Message, error) {
	select {
	case <-p.done:
		return p.msg, nil
	case <-ctx.Done():
		p.Cancel()
		return Message{}, ctx.Err()
	}
}

// Cancel deregisters the listener. It is safe to call after resolution.
func (p *Pending) Cancel() {
	p.router.remove(p.id)
}
