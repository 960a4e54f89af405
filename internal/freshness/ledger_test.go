package freshness

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/match-oracle/internal/quota"
)

func fixedClock(day string) func() time.Time {
	t, _ := time.Parse("2006-01-02", day)
	return func() time.Time { return t }
}

func newTestLedger(cap int, day string) *Ledger {
	clock := fixedClock(day)
	return NewLedgerWithClock(quota.NewGuardWithClock(cap, clock), clock)
}

func TestDecideCachedWhenRefreshedToday(t *testing.T) {
	ledger := newTestLedger(10, "2026-03-01")

	assert.Equal(t, Cached, ledger.Decide(KindMatches, "PL", "2026-03-01"))
	assert.Equal(t, Fetch, ledger.Decide(KindMatches, "PL", "2026-02-28"))
	assert.Equal(t, Fetch, ledger.Decide(KindMatches, "PL", ""))
}

func TestDecideUsesMarkers(t *testing.T) {
	ledger := newTestLedger(10, "2026-03-01")

	assert.Equal(t, Fetch, ledger.Decide(KindCompetitions, "all", ""))
	ledger.MarkRefreshed(KindCompetitions, "all")
	assert.Equal(t, Cached, ledger.Decide(KindCompetitions, "all", ""))
}

func TestDecideH2HChargesQuota(t *testing.T) {
	ledger := newTestLedger(2, "2026-03-01")

	assert.Equal(t, Fetch, ledger.Decide(KindH2H, "1001", ""))
	assert.Equal(t, Fetch, ledger.Decide(KindH2H, "1002", ""))
	assert.Equal(t, SkipQuota, ledger.Decide(KindH2H, "1003", ""), "quota exhausted")

	// Cached entities never touch the quota.
	assert.Equal(t, Cached, ledger.Decide(KindH2H, "1004", "2026-03-01"))
}

func TestDecideNonH2HNeverChargesQuota(t *testing.T) {
	clock := fixedClock("2026-03-01")
	guard := quota.NewGuardWithClock(1, clock)
	ledger := NewLedgerWithClock(guard, clock)

	for i := 0; i < 5; i++ {
		assert.Equal(t, Fetch, ledger.Decide(KindMatches, "PL", ""))
		assert.Equal(t, Fetch, ledger.Decide(KindCompetitions, "all", ""))
	}
	assert.Equal(t, 0, guard.Used())
}

func TestClaimDedupesConcurrentRefreshes(t *testing.T) {
	ledger := newTestLedger(10, "2026-03-01")

	var winners int64
	var wg sync.WaitGroup
	releases := make(chan func(), 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, won := ledger.Claim(KindH2H, "1001")
			if won {
				atomic.AddInt64(&winners, 1)
				releases <- release
			}
		}()
	}
	wg.Wait()
	close(releases)

	assert.Equal(t, int64(1), winners, "exactly one claimant must win")

	for release := range releases {
		release()
	}

	// After release the entity can be claimed again.
	_, won := ledger.Claim(KindH2H, "1001")
	assert.True(t, won)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "FETCH", Fetch.String())
	assert.Equal(t, "CACHED", Cached.String())
	assert.Equal(t, "SKIP_QUOTA", SkipQuota.String())
}
