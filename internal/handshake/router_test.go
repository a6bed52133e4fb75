package handshake

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://127.0.0.1:8765"

func newTestRouter() *Router {
	return NewRouter(testOrigin, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func resolved(p *Pending) bool {
	select {
	case <-p.Done():
		return true
	default:
		return false
	}
}

func TestRouter_RejectsUnscopedTargets(t *testing.T) {
	r := newTestRouter()
	p := r.Listen(testOrigin, "state-1")
	defer p.Cancel()

	msg := successMessage("id-token", "state-1")
	for _, target := range []string{"", "*", "http://evil.example", "http://127.0.0.1:9999"} {
		assert.Equal(t, 0, r.Post(Envelope{Origin: testOrigin, TargetOrigin: target, Message: msg}), target)
	}

	assert.False(t, resolved(p))
	assert.Equal(t, 1, r.Listeners())
}

func TestRouter_IgnoresOtherOrigins(t *testing.T) {
	r := newTestRouter()
	p := r.Listen(testOrigin, "state-1")
	defer p.Cancel()

	r.Post(Envelope{Origin: "http://localhost:8765", TargetOrigin: testOrigin, Message: successMessage("id", "state-1")})

	assert.False(t, resolved(p))
}

func TestRouter_DiscardsStateMismatchAndKeepsWaiting(t *testing.T) {
	r := newTestRouter()
	p := r.Listen(testOrigin, "state-1")
	defer p.Cancel()

	assert.Equal(t, 0, r.Post(Envelope{Origin: testOrigin, TargetOrigin: testOrigin, Message: successMessage("stale", "state-0")}))
	assert.False(t, resolved(p))

	assert.Equal(t, 1, r.Post(Envelope{Origin: testOrigin, TargetOrigin: testOrigin, Message: successMessage("fresh", "state-1")}))

	msg, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", msg.IDToken)
	assert.Equal(t, 0, r.Listeners())
}

func TestRouter_ResolvesOnlyOnce(t *testing.T) {
	r := newTestRouter()
	p := r.Listen(testOrigin, "state-1")

	env := Envelope{Origin: testOrigin, TargetOrigin: testOrigin, Message: successMessage("first", "state-1")}
	assert.Equal(t, 1, r.Post(env))

	env.Message.IDToken = "second"
	assert.Equal(t, 0, r.Post(env))

	msg, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", msg.IDToken)
}

func TestRouter_ErrorMessages(t *testing.T) {
	r := newTestRouter()

	p := r.Listen(testOrigin, "state-1")
	assert.Equal(t, 0, r.Post(Envelope{Origin: testOrigin, TargetOrigin: testOrigin, Message: errorMessage("access_denied", "state-0")}))
	assert.False(t, resolved(p))

	assert.Equal(t, 1, r.Post(Envelope{Origin: testOrigin, TargetOrigin: testOrigin, Message: errorMessage(ReasonMissingAccessToken, "")}))
	msg, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TypeAuthError, msg.Type)
	assert.Equal(t, ReasonMissingAccessToken, msg.Error)
}

func TestPending_CancelDeregisters(t *testing.T) {
	r := newTestRouter()
	p := r.Listen(testOrigin, "state-1")
	require.Equal(t, 1, r.Listeners())

	p.Cancel()
	p.Cancel()

	assert.Equal(t, 0, r.Listeners())
	assert.Equal(t, 0, r.Post(Envelope{Origin: testOrigin, TargetOrigin: testOrigin, Message: successMessage("id", "state-1")}))
	assert.False(t, resolved(p))
}

func TestPending_WaitHonoursContext(t *testing.T) {
	r := newTestRouter()
	p := r.Listen(testOrigin, "state-1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, r.Listeners())
}
