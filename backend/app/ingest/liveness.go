package ingest

import (
	"sync"
	"time"
)

// Liveness maps agent name to the last time a report from it was accepted.
// It lives in memory only and starts empty on every hub start.
type Liveness struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func NewLiveness() *Liveness {
	return &Liveness{seen: make(map[string]time.Time)}
}

// Touch records a report at t. An older t never replaces a newer one.
func (l *Liveness) Touch(name string, t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.seen[name]; ok && prev.After(t) {
		return
	}
	l.seen[name] = t
}

// LastSeen returns the last report time of name.
func (l *Liveness) LastSeen(name string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.seen[name]
	return t, ok
}

// Snapshot returns a copy of the whole map.
func (l *Liveness) Snapshot() map[string]time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]time.Time, len(l.seen))
	for k, v := range l.seen {
		out[k] = v
	}
	return out
}

func (l *Liveness) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}
