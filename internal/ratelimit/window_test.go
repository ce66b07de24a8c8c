package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindow_Boundary(t *testing.T) {
	w := NewWindow(5, time.Minute)

	for i := 0; i < 5; i++ {
		res := w.Allow("login:1.2.3.4:hr@example.com")
		assert.True(t, res.OK, "attempt %d should be allowed", i+1)
	}

	// 6th attempt within the window is rejected and carries the reset time.
	res := w.Allow("login:1.2.3.4:hr@example.com")
	assert.False(t, res.OK)
	assert.False(t, res.ResetAt.IsZero())
}

func TestWindow_KeysAreIndependent(t *testing.T) {
	w := NewWindow(1, time.Minute)

	assert.True(t, w.Allow("login:1.2.3.4:a").OK)
	assert.False(t, w.Allow("login:1.2.3.4:a").OK)
	assert.True(t, w.Allow("login:5.6.7.8:a").OK)
	assert.True(t, w.Allow("login:1.2.3.4:b").OK)
}

func TestWindow_Rollover(t *testing.T) {
	w := NewWindow(2, time.Minute)
	current := time.Now()
	w.now = func() time.Time { return current }

	assert.True(t, w.Allow("k").OK)
	assert.True(t, w.Allow("k").OK)
	assert.False(t, w.Allow("k").OK)

	// After the window elapses the first attempt succeeds again.
	current = current.Add(time.Minute + time.Second)
	res := w.Allow("k")
	assert.True(t, res.OK)
	assert.Equal(t, 1, res.Remaining)
}
