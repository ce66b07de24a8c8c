package idle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-portal/internal/event"
)

type hookSpy struct {
	mu        sync.Mutex
	calls     []string
	logoutErr error
}

func (h *hookSpy) hooks() Hooks {
	return Hooks{
		Logout: func(context.Context) error {
			h.record("logout")
			return h.logoutErr
		},
		ProviderSignOut: func(context.Context) error {
			h.record("provider_signout")
			return nil
		},
		Redirect: func(dest string) {
			h.record("redirect:" + dest)
		},
	}
}

func (h *hookSpy) record(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, s)
}

func (h *hookSpy) recorded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func TestMonitor_FiresAfterIdle(t *testing.T) {
	spy := &hookSpy{logoutErr: errors.New("network down")}
	m := NewMonitor(event.NewBus(), Config{IdleTimeout: 60 * time.Millisecond, Ping: time.Hour}, spy.hooks())
	m.Start()
	defer m.Stop()

	select {
	case <-m.Fired():
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never fired")
	}

	// Redirect happens even though the logout call failed.
	assert.Equal(t, []string{"logout", "provider_signout", "redirect:/login"}, spy.recorded())
}

func TestMonitor_ActivityDefersFire(t *testing.T) {
	spy := &hookSpy{}
	m := NewMonitor(event.NewBus(), Config{IdleTimeout: 250 * time.Millisecond, Ping: time.Hour}, spy.hooks())
	m.Start()
	defer m.Stop()

	// Keep marking activity; the timer must keep moving out.
	for i := 0; i < 4; i++ {
		time.Sleep(100 * time.Millisecond)
		m.MarkActivity()
	}

	select {
	case <-m.Fired():
		t.Fatal("monitor fired despite continuous activity")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMonitor_CrossTabReset(t *testing.T) {
	bus := event.NewBus()
	spyA, spyB := &hookSpy{}, &hookSpy{}

	tabA := NewMonitor(bus, Config{IdleTimeout: 400 * time.Millisecond, Ping: time.Hour, Source: "tab-a"}, spyA.hooks())
	tabB := NewMonitor(bus, Config{IdleTimeout: 400 * time.Millisecond, Ping: time.Hour, Source: "tab-b"}, spyB.hooks())
	tabA.Start()
	tabB.Start()
	defer tabA.Stop()
	defer tabB.Stop()

	// Activity in tab A shortly before tab B's deadline must reschedule B.
	time.Sleep(250 * time.Millisecond)
	tabA.MarkActivity()

	select {
	case <-tabB.Fired():
		t.Fatal("tab B fired although tab A was active")
	case <-time.After(300 * time.Millisecond):
	}

	// B adopted A's newer timestamp.
	assert.True(t, tabB.LastActivity().Equal(tabA.LastActivity()))

	// With no further activity anywhere, B eventually fires.
	select {
	case <-tabB.Fired():
	case <-time.After(2 * time.Second):
		t.Fatal("tab B never fired after activity stopped")
	}
	assert.Contains(t, spyB.recorded(), "redirect:/login")
}

func TestMonitor_OlderBroadcastIgnored(t *testing.T) {
	bus := event.NewBus()
	m := NewMonitor(bus, Config{IdleTimeout: time.Hour, Ping: time.Hour, Source: "tab-a"}, Hooks{})
	m.Start()
	defer m.Stop()

	before := m.LastActivity()
	require.False(t, before.IsZero())

	bus.Publish(event.Activity{Timestamp: before.Add(-time.Minute), Source: "tab-b"})
	time.Sleep(50 * time.Millisecond)

	assert.True(t, m.LastActivity().Equal(before))
}

func TestMonitor_PingDoesNotResetActivity(t *testing.T) {
	spy := &hookSpy{}
	m := NewMonitor(event.NewBus(), Config{IdleTimeout: 200 * time.Millisecond, Ping: 40 * time.Millisecond}, spy.hooks())
	m.Start()
	defer m.Stop()

	// The drift ticker runs several times inside the idle window; if it reset
	// lastActivity the monitor would never fire.
	select {
	case <-m.Fired():
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never fired; drift ticker must not count as activity")
	}
}

func TestMonitor_StopCancelsEverything(t *testing.T) {
	spy := &hookSpy{}
	m := NewMonitor(event.NewBus(), Config{IdleTimeout: 80 * time.Millisecond, Ping: time.Hour}, spy.hooks())
	m.Start()
	m.Stop()

	select {
	case <-m.Fired():
		t.Fatal("monitor fired after Stop")
	case <-time.After(200 * time.Millisecond):
	}
	assert.Empty(t, spy.recorded())
}
