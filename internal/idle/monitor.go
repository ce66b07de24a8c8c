// Package idle implements the auto-logout monitor. Each tab tracks the last
// observed user interaction and schedules a single logout timer; activity is
// broadcast so that idleness is a property of the user across all open tabs,
// not of one tab.
package idle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"hr-portal/internal/event"
)

const (
	DefaultIdleTimeout = 15 * time.Minute
	DefaultPing        = 30 * time.Second
)

// Hooks are the side effects taken when the idle timer fires. Logout and
// ProviderSignOut are best-effort; Redirect always runs.
type Hooks struct {
	Logout          func(ctx context.Context) error
	ProviderSignOut func(ctx context.Context) error
	Redirect        func(destination string)
}

type Config struct {
	IdleTimeout time.Duration
	Ping        time.Duration // drift re-check interval; never resets activity
	Source      string        // tab id used to skip own broadcasts
}

type Monitor struct {
	cfg   Config
	hooks Hooks
	bus   event.Bus

	mu           sync.Mutex
	lastActivity time.Time

	kick     chan struct{}
	quit     chan struct{}
	fired    chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

func NewMonitor(bus event.Bus, cfg Config, hooks Hooks) *Monitor {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Ping <= 0 {
		cfg.Ping = DefaultPing
	}
	if cfg.Source == "" {
		cfg.Source = uuid.NewString()
	}
	if hooks.Redirect == nil {
		hooks.Redirect = func(string) {}
	}
	return &Monitor{
		cfg:   cfg,
		hooks: hooks,
		bus:   bus,
		kick:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
		fired: make(chan struct{}),
		now:   time.Now,
	}
}

// Start begins watching. The monitor runs until the idle timer fires or Stop
// is called, whichever comes first.
func (m *Monitor) Start() {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.mu.Unlock()

	events, unsubscribe := m.bus.Subscribe()
	go m.run(events, unsubscribe)
}

// MarkActivity records a local user interaction: it resets the idle clock,
// reschedules the timer and broadcasts the timestamp to other tabs.
func (m *Monitor) MarkActivity() {
	now := m.now()
	m.mu.Lock()
	if now.After(m.lastActivity) {
		m.lastActivity = now
	}
	m.mu.Unlock()

	m.reschedule()
	m.bus.Publish(event.Activity{Timestamp: now, Source: m.cfg.Source})
}

// Fired is closed once the idle timer has fired and logout ran.
func (m *Monitor) Fired() <-chan struct{} {
	return m.fired
}

// LastActivity returns the authoritative activity timestamp: the maximum
// observed locally or adopted from a broadcast.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// Stop tears down the timer, the drift ticker and the bus subscription
// together. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.quit) })
}

func (m *Monitor) run(events <-chan event.Activity, unsubscribe func()) {
	defer unsubscribe()

	timer := time.NewTimer(m.due())
	defer timer.Stop()
	ticker := time.NewTicker(m.cfg.Ping)
	defer ticker.Stop()

	resetTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(m.due())
	}

	for {
		select {
		case <-m.quit:
			return

		case <-m.kick:
			resetTimer()

		case a, ok := <-events:
			if !ok {
				return
			}
			if a.Source == m.cfg.Source {
				continue
			}
			if m.adopt(a.Timestamp) {
				resetTimer()
			}

		case <-ticker.C:
			// Drift re-check only; lastActivity is untouched.
			resetTimer()

		case <-timer.C:
			if m.due() > 0 {
				// Activity raced in between the fire and this read.
				timer.Reset(m.due())
				continue
			}
			m.fire()
			return
		}
	}
}

// adopt takes a remote activity timestamp if it is newer than our own.
func (m *Monitor) adopt(ts time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ts.After(m.lastActivity) {
		m.lastActivity = ts
		return true
	}
	return false
}

func (m *Monitor) due() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.lastActivity.Add(m.cfg.IdleTimeout).Sub(m.now())
	if d < 0 {
		return 0
	}
	return d
}

func (m *Monitor) reschedule() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// fire performs the unconditional logout: server logout and provider
// sign-out are attempted and their errors ignored, then the redirect runs
// regardless.
func (m *Monitor) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if m.hooks.Logout != nil {
		_ = m.hooks.Logout(ctx)
	}
	if m.hooks.ProviderSignOut != nil {
		_ = m.hooks.ProviderSignOut(ctx)
	}
	m.hooks.Redirect("/login")
	close(m.fired)
}
