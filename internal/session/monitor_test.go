package session

import (
	"ggarquitectos-site/internal/events"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type monitorHarness struct {
	monitor  *Monitor
	clock    *manualClock
	ticks    chan time.Time
	logouts  atomic.Int32
	warnings chan events.ExpiryWarning
}

func newMonitorHarness(t *testing.T, start time.Time) *monitorHarness {
	t.Helper()

	h := &monitorHarness{
		clock:    &manualClock{now: start},
		ticks:    make(chan time.Time),
		warnings: make(chan events.ExpiryWarning, 8),
	}

	bus := events.NewBus(discardLogger())
	events.Subscribe(bus, events.SessionExpiring, func(w events.ExpiryWarning) {
		h.warnings <- w
	})

	h.monitor = NewMonitor(MonitorConfig{
		Interval:   DefaultCheckInterval,
		WarnBefore: DefaultWarnBefore,
	}, func() { h.logouts.Add(1) }, bus, discardLogger())
	h.monitor.now = h.clock.Now
	h.monitor.ticker = func(time.Duration) (<-chan time.Time, func()) {
		return h.ticks, func() {}
	}

	t.Cleanup(h.monitor.Stop)
	return h
}

// tick advances the clock and delivers one tick. The send only completes once
// the check loop is waiting, so the previous check has finished.
func (h *monitorHarness) tick(t *testing.T, at time.Time) {
	t.Helper()
	h.clock.Set(at)
	select {
	case h.ticks <- at:
	case <-time.After(time.Second):
		t.Fatal("monitor did not accept tick")
	}
}

func (h *monitorHarness) nextWarning(t *testing.T) events.ExpiryWarning {
	t.Helper()
	select {
	case w := <-h.warnings:
		return w
	case <-time.After(time.Second):
		t.Fatal("expected an expiry warning")
		return events.ExpiryWarning{}
	}
}

func TestMonitor_LogsOutExpiredTokenOnArm(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	h := newMonitorHarness(t, start)

	h.monitor.Arm(tokenExpiringAt(t, "a@b.pe", start.Add(-10*time.Second)))

	assert.Eventually(t, func() bool { return h.logouts.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, h.monitor.Armed())
}

func TestMonitor_LogsOutUndecodableToken(t *testing.T) {
	h := newMonitorHarness(t, time.Unix(1_700_000_000, 0))

	h.monitor.Arm("garbage")

	assert.Eventually(t, func() bool { return h.logouts.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestMonitor_LogsOutWithinTwoIntervals(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	h := newMonitorHarness(t, start)

	h.monitor.Arm(tokenExpiringAt(t, "a@b.pe", start.Add(61*time.Second)))

	first := h.nextWarning(t)
	assert.Equal(t, 61*time.Second, first.Remaining)
	assert.Equal(t, int32(0), h.logouts.Load())

	h.tick(t, start.Add(60*time.Second))
	second := h.nextWarning(t)
	assert.Equal(t, time.Second, second.Remaining)
	assert.Equal(t, int32(0), h.logouts.Load())

	h.tick(t, start.Add(120*time.Second))
	assert.Eventually(t, func() bool { return h.logouts.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, h.monitor.Armed())
}

func TestMonitor_DoesNotWarnForDistantExpiry(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	h := newMonitorHarness(t, start)

	h.monitor.Arm(tokenExpiringAt(t, "a@b.pe", start.Add(time.Hour)))
	h.tick(t, start.Add(time.Minute))
	h.tick(t, start.Add(2*time.Minute))

	assert.Len(t, h.warnings, 0)
	assert.Equal(t, int32(0), h.logouts.Load())
	assert.True(t, h.monitor.Armed())
}

func TestMonitor_DisarmStopsChecks(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	h := newMonitorHarness(t, start)

	h.monitor.Arm(tokenExpiringAt(t, "a@b.pe", start.Add(61*time.Second)))
	h.nextWarning(t)

	h.monitor.Disarm()
	assert.False(t, h.monitor.Armed())

	h.clock.Set(start.Add(time.Hour))
	select {
	case h.ticks <- start.Add(time.Hour):
		t.Fatal("disarmed monitor still consumed a tick")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(0), h.logouts.Load())
}

func TestMonitor_RearmReplacesPreviousToken(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	h := newMonitorHarness(t, start)

	short := tokenExpiringAt(t, "a@b.pe", start.Add(61*time.Second))
	long := tokenExpiringAt(t, "a@b.pe", start.Add(3*time.Hour))

	h.monitor.Arm(short)
	h.nextWarning(t)
	h.monitor.Arm(long)

	h.tick(t, start.Add(2*time.Minute))
	h.tick(t, start.Add(3*time.Minute))

	assert.Equal(t, int32(0), h.logouts.Load())
	assert.True(t, h.monitor.Armed())
}

func TestMonitor_WatchFollowsStore(t *testing.T) {
	start := time.Now()
	h := newMonitorHarness(t, start)
	store := NewStore(discardLogger(), nil)

	h.monitor.Watch(store)
	assert.False(t, h.monitor.Armed())

	require.NoError(t, store.Login(tokenExpiringAt(t, "a@b.pe", start.Add(time.Hour)), testUser("a@b.pe")))
	assert.True(t, h.monitor.Armed())

	store.Logout()
	assert.False(t, h.monitor.Armed())
}

func TestMonitor_ExpiredLoginEndsSession(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	store := NewStore(discardLogger(), nil)

	m := NewMonitor(MonitorConfig{}, func() { store.Logout() }, nil, discardLogger())
	m.now = func() time.Time { return start }
	t.Cleanup(m.Stop)

	m.Watch(store)
	require.NoError(t, store.Login(tokenExpiringAt(t, "a@b.pe", start.Add(-time.Second)), testUser("a@b.pe")))

	assert.Eventually(t, func() bool { return !store.IsAuthenticated() }, time.Second, 5*time.Millisecond)
	assert.False(t, m.Armed())
}

func TestMonitor_StopPreventsRearm(t *testing.T) {
	h := newMonitorHarness(t, time.Unix(1_700_000_000, 0))

	h.monitor.Stop()
	h.monitor.Arm(tokenExpiringAt(t, "a@b.pe", time.Unix(1_700_003_600, 0)))

	assert.False(t, h.monitor.Armed())
}
