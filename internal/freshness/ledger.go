// Package freshness decides, per cached entity, whether a refresh from the
// upstream source is due.
package freshness

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/match-oracle/internal/quota"
)

// Kind identifies the class of cached entity a decision applies to.
type Kind string

// Entity kinds tracked by the ledger. Competition and match refreshes are
// free; head-to-head refreshes are charged against the daily quota.
const (
	KindCompetitions Kind = "competitions"
	KindMatches      Kind = "matches"
	KindH2H          Kind = "h2h"
)

// Decision is the outcome of a freshness check.
type Decision int

const (
	// Fetch means the cached record is missing or stale and a refresh may proceed.
	Fetch Decision = iota
	// Cached means the record was refreshed today and must be reused.
	Cached
	// SkipQuota means a refresh is due but the daily quota denied it; callers
	// fall back to whatever snapshot exists rather than fail.
	SkipQuota
)

func (d Decision) String() string {
	switch d {
	case Fetch:
		return "FETCH"
	case Cached:
		return "CACHED"
	case SkipQuota:
		return "SKIP_QUOTA"
	}
	return "UNKNOWN"
}

// Ledger tracks per-entity last-refresh dates and arbitrates concurrent
// refresh attempts. Markers live in memory: the persisted records carry their
// own last-updated dates, the ledger only removes redundant store reads and
// dedupes in-flight fetches.
type Ledger struct {
	markers *cache.Cache
	guard   *quota.Guard
	mu      sync.Mutex
	claims  map[string]struct{}
	now     func() time.Time
}

// NewLedger creates a ledger backed by the given quota guard.
func NewLedger(guard *quota.Guard) *Ledger {
	return &Ledger{
		markers: cache.New(48*time.Hour, time.Hour),
		guard:   guard,
		claims:  make(map[string]struct{}),
		now:     time.Now,
	}
}

// NewLedgerWithClock creates a ledger with an injected clock for tests.
func NewLedgerWithClock(guard *quota.Guard, now func() time.Time) *Ledger {
	l := NewLedger(guard)
	l.now = now
	return l
}

// Today returns the current UTC calendar date in ISO format.
func (l *Ledger) Today() string {
	return l.now().UTC().Format("2006-01-02")
}

// Decide determines whether a refresh is due for the entity. lastUpdated is
// the ISO date the stored record was last refreshed, empty when no record
// exists. For KindH2H a Fetch decision consumes a quota token; the token is
// charged on attempt, not on fetch success.
func (l *Ledger) Decide(kind Kind, key string, lastUpdated string) Decision {
	today := l.Today()

	if lastUpdated == today {
		return Cached
	}
	if marked, ok := l.markers.Get(markerKey(kind, key)); ok && marked == today {
		return Cached
	}

	if kind == KindH2H && !l.guard.TryAcquire() {
		return SkipQuota
	}

	return Fetch
}

// Claim registers an in-flight refresh for the entity. The first caller wins
// and receives won=true; it must call release when the refresh completes so
// racing callers can observe the result through the store. Losers reuse
// whatever the store holds instead of issuing a duplicate upstream fetch.
func (l *Ledger) Claim(kind Kind, key string) (release func(), won bool) {
	ck := markerKey(kind, key)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, inFlight := l.claims[ck]; inFlight {
		return func() {}, false
	}

	l.claims[ck] = struct{}{}
	return func() {
		l.mu.Lock()
		delete(l.claims, ck)
		l.mu.Unlock()
	}, true
}

// MarkRefreshed records that the entity was refreshed today.
func (l *Ledger) MarkRefreshed(kind Kind, key string) {
	l.markers.Set(markerKey(kind, key), l.Today(), cache.DefaultExpiration)
}

func markerKey(kind Kind, key string) string {
	return fmt.Sprintf("%s:%s", kind, key)
}
