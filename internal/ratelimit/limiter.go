package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Action classes tracked by the limiter.
const (
	ActionInvite    = "invite"
	ActionCreateOrg = "create_org"
)

// window is a fixed-size counting window for one (action, identifier) key.
type window struct {
	count   int
	resetAt time.Time
}

// Stats summarizes an identifier's current usage across the known actions.
type Stats struct {
	Invites      int `json:"invites"`
	OrgCreations int `json:"org_creations"`
}

// Limiter tracks request counts per (action, identifier) key in fixed
// windows. It is process-local by design: horizontally scaled deployments
// keep independent counters unless backed by an external shared store.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// New returns an empty Limiter.
func New() *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow records an attempt for the key and reports whether it is permitted.
// A rejected attempt does not advance the window: the caller keeps the same
// resetAt until it expires naturally. retryAfter is zero when allowed.
func (l *Limiter) Allow(action, identifier string, max int, windowSize time.Duration) (allowed bool, retryAfter time.Duration, count int) {
	key := action + ":" + identifier
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(windowSize)}
		return true, 0, 1
	}

	if w.count >= max {
		return false, w.resetAt.Sub(now), w.count
	}

	w.count++
	return true, 0, w.count
}

// Stats returns the identifier's current counts for the known action classes.
// Expired windows count as zero.
func (l *Limiter) Stats(identifier string) Stats {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	return Stats{
		Invites:      l.activeCount(ActionInvite+":"+identifier, now),
		OrgCreations: l.activeCount(ActionCreateOrg+":"+identifier, now),
	}
}

// Clear drops all windows for the identifier across the known actions.
func (l *Limiter) Clear(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, ActionInvite+":"+identifier)
	delete(l.windows, ActionCreateOrg+":"+identifier)
}

// Sweep removes every expired window and returns how many were dropped.
// This is the only deletion path outside of window replacement in Allow.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked windows, expired or not.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.windows)
}

func (l *Limiter) activeCount(key string, now time.Time) int {
	if w, ok := l.windows[key]; ok && !now.After(w.resetAt) {
		return w.count
	}
	return 0
}

// FormatWait renders a wait duration for user-facing rate limit errors.
func FormatWait(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 1 {
			secs = 1
		}
		return fmt.Sprintf("%d seconds", secs)
	}
	mins := int(d.Minutes())
	if mins < 1 {
		mins = 1
	}
	return fmt.Sprintf("%d minutes", mins)
}
