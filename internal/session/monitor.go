package session

import (
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/metrics"
	"ggarquitectos-site/internal/token"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultCheckInterval = 60 * time.Second
	DefaultWarnBefore    = 5 * time.Minute
)

type MonitorConfig struct {
	Interval   time.Duration
	WarnBefore time.Duration
}

// Monitor logs the session out once its token has expired. It checks as soon
// as it is armed and then on every interval.
type Monitor struct {
	mu         sync.Mutex
	token      string
	generation uint64
	stop       func()
	retired    bool
	unwatch    func()

	interval   time.Duration
	warnBefore time.Duration
	logout     func()
	bus        *events.Bus
	logger     *slog.Logger

	now    func() time.Time
	ticker func(time.Duration) (<-chan time.Time, func())
}

func NewMonitor(cfg MonitorConfig, logout func(), bus *events.Bus, logger *slog.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultCheckInterval
	}
	if cfg.WarnBefore < 0 {
		cfg.WarnBefore = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		interval:   cfg.Interval,
		warnBefore: cfg.WarnBefore,
		logout:     logout,
		bus:        bus,
		logger:     logger,
		now:        time.Now,
		ticker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Arm starts watching tok, replacing whatever was watched before. Arming the
// token that is already armed is a no-op.
func (m *Monitor) Arm(tok string) {
	if tok == "" {
		m.Disarm()
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.retired || (m.stop != nil && m.token == tok) {
		return
	}

	m.disarmLocked()

	m.generation++
	gen := m.generation
	m.token = tok

	ticks, stopTicker := m.ticker(m.interval)
	done := make(chan struct{})
	var once sync.Once
	m.stop = func() {
		once.Do(func() {
			stopTicker()
			close(done)
		})
	}

	go m.run(gen, ticks, done)
}

func (m *Monitor) run(gen uint64, ticks <-chan time.Time, done <-chan struct{}) {
	if !m.check(gen) {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ticks:
			if !m.check(gen) {
				return
			}
		}
	}
}

// Disarm stops the check loop. It does not log out.
func (m *Monitor) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarmLocked()
}

func (m *Monitor) disarmLocked() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	m.token = ""
	m.generation++
}

func (m *Monitor) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop != nil
}

// check runs one expiry check for generation gen and reports whether the loop
// should keep going.
func (m *Monitor) check(gen uint64) bool {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return false
	}
	tok := m.token
	now := m.now()
	m.mu.Unlock()

	claims, ok := token.Decode(tok)
	if !ok || claims.Expired(now) {
		result := metrics.ExpirationResultExpired
		if !ok {
			result = metrics.ExpirationResultUndecodable
		}
		metrics.ExpirationChecks.WithLabelValues(result).Inc()

		m.mu.Lock()
		if gen != m.generation {
			m.mu.Unlock()
			return false
		}
		m.disarmLocked()
		m.mu.Unlock()

		m.logger.Info("Session token expired, logging out", "result", result)
		if m.logout != nil {
			m.logout()
		}
		return false
	}

	remaining := claims.ExpiresAt.Time.Sub(now)
	if remaining <= m.warnBefore {
		metrics.ExpirationChecks.WithLabelValues(metrics.ExpirationResultExpiring).Inc()
		m.logger.Warn("Session token expires soon", "remaining", remaining.Round(time.Second))
		if m.bus != nil {
			events.Publish(m.bus, events.SessionExpiring, events.ExpiryWarning{
				ExpiresAt: claims.ExpiresAt.Time,
				Remaining: remaining,
			})
		}
		return true
	}

	metrics.ExpirationChecks.WithLabelValues(metrics.ExpirationResultValid).Inc()
	return true
}

// Watch keeps the monitor armed with whatever token store holds.
func (m *Monitor) Watch(store *Store) {
	unsubscribe := store.Subscribe(m.apply)

	m.mu.Lock()
	if m.unwatch != nil {
		m.unwatch()
	}
	m.unwatch = unsubscribe
	m.mu.Unlock()

	m.apply(store.State())
}

func (m *Monitor) apply(st State) {
	if st.Authenticated {
		m.Arm(st.Token)
		return
	}
	m.Disarm()
}

// Stop retires the monitor. It cannot be armed again.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.disarmLocked()
	m.retired = true
	if m.unwatch != nil {
		m.unwatch()
		m.unwatch = nil
	}
}
