// Package quota enforces the fixed per-day budget on expensive provider lookups.
package quota

import (
	"sync"
	"time"

	"github.com/yourusername/match-oracle/internal/metrics"
)

// DefaultMaxPerDay matches the provider free tier headroom reserved for
// head-to-head lookups.
const DefaultMaxPerDay = 10

// Guard is an explicit stateful service tracking how many quota-limited
// lookups have been charged for the current UTC calendar date. The counter
// resets lazily when the observed date rolls over. Tokens are charged on
// attempt, not on success, so a timed-out upstream fetch cannot be used to
// bypass the cap.
type Guard struct {
	mu        sync.Mutex
	date      string
	used      int
	maxPerDay int
	now       func() time.Time
}

// NewGuard creates a guard with the given daily cap. A cap of zero or less
// falls back to DefaultMaxPerDay.
func NewGuard(maxPerDay int) *Guard {
	if maxPerDay <= 0 {
		maxPerDay = DefaultMaxPerDay
	}
	return &Guard{
		maxPerDay: maxPerDay,
		now:       time.Now,
	}
}

// NewGuardWithClock creates a guard with an injected clock for tests.
func NewGuardWithClock(maxPerDay int, now func() time.Time) *Guard {
	g := NewGuard(maxPerDay)
	g.now = now
	return g
}

// TryAcquire charges one token against today's budget. It returns false
// without side effects once the cap is reached. The date check and the
// increment happen under one lock so concurrent callers cannot overshoot.
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollOverLocked()

	if g.used >= g.maxPerDay {
		metrics.RecordQuotaDenied()
		return false
	}

	g.used++
	metrics.UpdateQuotaUsed(g.used)
	return true
}

// Used reports how many tokens have been charged today.
func (g *Guard) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollOverLocked()
	return g.used
}

// Remaining reports how many tokens are left today.
func (g *Guard) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollOverLocked()
	return g.maxPerDay - g.used
}

// MaxPerDay returns the configured daily cap.
func (g *Guard) MaxPerDay() int {
	return g.maxPerDay
}

// rollOverLocked resets the counter when the UTC date has changed.
// Callers must hold g.mu.
func (g *Guard) rollOverLocked() {
	today := g.now().UTC().Format("2006-01-02")
	if g.date != today {
		g.date = today
		g.used = 0
		metrics.UpdateQuotaUsed(0)
	}
}
