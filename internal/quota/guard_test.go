package quota

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(day string) func() time.Time {
	t, _ := time.Parse("2006-01-02", day)
	return func() time.Time { return t }
}

func TestGuardEnforcesDailyCap(t *testing.T) {
	guard := NewGuardWithClock(10, fixedClock("2026-03-01"))

	for i := 0; i < 10; i++ {
		assert.True(t, guard.TryAcquire(), "acquisition %d should succeed", i+1)
	}

	assert.False(t, guard.TryAcquire(), "11th acquisition must be denied")
	assert.Equal(t, 10, guard.Used())
	assert.Equal(t, 0, guard.Remaining())
}

func TestGuardDayRollover(t *testing.T) {
	day := "2026-03-01"
	guard := NewGuardWithClock(10, func() time.Time {
		d, _ := time.Parse("2006-01-02", day)
		return d
	})

	for i := 0; i < 10; i++ {
		assert.True(t, guard.TryAcquire())
	}
	assert.False(t, guard.TryAcquire())

	day = "2026-03-02"
	assert.True(t, guard.TryAcquire(), "first acquisition on the next day must succeed")
	assert.Equal(t, 1, guard.Used())
	assert.Equal(t, 9, guard.Remaining())
}

func TestGuardConcurrentAcquisitions(t *testing.T) {
	guard := NewGuardWithClock(10, fixedClock("2026-03-01"))

	var granted int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.TryAcquire() {
				atomic.AddInt64(&granted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), granted, "exactly the cap must be granted under contention")
}

func TestGuardDefaultsCap(t *testing.T) {
	assert.Equal(t, DefaultMaxPerDay, NewGuard(0).MaxPerDay())
	assert.Equal(t, DefaultMaxPerDay, NewGuard(-5).MaxPerDay())
	assert.Equal(t, 3, NewGuard(3).MaxPerDay())
}
