package ratelimit

import (
	"sync"
	"time"
)

type Result struct {
	OK        bool
	Remaining int
	ResetAt   time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

// Window is a fixed-window counter keyed by an arbitrary string (the login
// path keys by identifier+IP). It is in-process only and not shared across
// server instances.
type Window struct {
	limit   int
	window  time.Duration
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewWindow(limit int, window time.Duration) *Window {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Window{
		limit:   limit,
		window:  window,
		buckets: map[string]*bucket{},
		now:     time.Now,
	}
}

// Allow records an attempt under key and reports whether it is within the
// window's limit. The first attempt after a window rolls over starts a fresh
// count.
func (w *Window) Allow(key string) Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	b, exists := w.buckets[key]
	if !exists || !b.resetAt.After(now) {
		w.gcLocked(now)
		w.buckets[key] = &bucket{count: 1, resetAt: now.Add(w.window)}
		return Result{OK: true, Remaining: w.limit - 1, ResetAt: now.Add(w.window)}
	}

	if b.count >= w.limit {
		return Result{OK: false, Remaining: 0, ResetAt: b.resetAt}
	}

	b.count++
	return Result{OK: true, Remaining: w.limit - b.count, ResetAt: b.resetAt}
}

func (w *Window) gcLocked(now time.Time) {
	if len(w.buckets) < 1000 {
		return
	}
	for key, b := range w.buckets {
		if !b.resetAt.After(now) {
			delete(w.buckets, key)
		}
	}
}
