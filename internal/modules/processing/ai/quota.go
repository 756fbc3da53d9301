package ai

import (
	"context"
	"sync"
	"time"
)

// Ledger is the per-user admission control for upstream calls. Admission is
// consumed on every upstream attempt, including ones that later fail; a
// flapping upstream must not grant free retries. Cache hits never touch the
// ledger.
type Ledger interface {
	// TryAdmit atomically consumes one slot for the user if available.
	// Concurrent callers for the same user must never over-admit.
	TryAdmit(ctx context.Context, userID string) (Admission, error)
	// Usage returns the user's consumption in the current window.
	Usage(ctx context.Context, userID string) (UsageSnapshot, error)
}

// userWindow is one active quota record. Mutated only under its own lock.
type userWindow struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// MemoryLedger is a fixed-window-with-reset ledger held in process memory.
// Per-user locking only; unrelated users never contend.
type MemoryLedger struct {
	maxCalls int
	window   time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	users map[string]*userWindow
}

// NewMemoryLedger creates a ledger admitting maxCalls per window per user.
func NewMemoryLedger(maxCalls int, window time.Duration) *MemoryLedger {
	return &MemoryLedger{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
		users:    make(map[string]*userWindow),
	}
}

func (l *MemoryLedger) record(userID string) *userWindow {
	l.mu.RLock()
	w, ok := l.users[userID]
	l.mu.RUnlock()
	if ok {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok = l.users[userID]; ok {
		return w
	}
	w = &userWindow{windowStart: l.now()}
	l.users[userID] = w
	return w
}

// TryAdmit implements Ledger. Window rollover happens under the same lock as
// the admission check, so resets are never lost under concurrency.
func (l *MemoryLedger) TryAdmit(ctx context.Context, userID string) (Admission, error) {
	w := l.record(userID)
	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	if now.Sub(w.windowStart) >= l.window {
		w.windowStart = now
		w.count = 0
	}

	if w.count >= l.maxCalls {
		return Admission{
			Admitted:   false,
			RetryAfter: w.windowStart.Add(l.window).Sub(now),
		}, nil
	}

	w.count++
	return Admission{Admitted: true}, nil
}

// Usage implements Ledger.
func (l *MemoryLedger) Usage(ctx context.Context, userID string) (UsageSnapshot, error) {
	w := l.record(userID)
	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	if now.Sub(w.windowStart) >= l.window {
		w.windowStart = now
		w.count = 0
	}

	remaining := l.maxCalls - w.count
	if remaining < 0 {
		remaining = 0
	}
	return UsageSnapshot{
		WindowStart: w.windowStart,
		Count:       w.count,
		Limit:       l.maxCalls,
		Remaining:   remaining,
	}, nil
}
