package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/match-oracle/internal/repository"
)

func TestStatsEmptyStore(t *testing.T) {
	registry := repository.RetentionRegistry{
		&fakeCollection{name: "competitions", protected: true, dateField: "ingested_at"},
		&fakeCollection{name: "matches", protected: true, dateField: "utc_date"},
		&fakeCollection{name: "team_stats"},
		&fakeCollection{name: "predictions", dateField: "created_at"},
		&fakeCollection{name: "fixtures", dateField: "fixture_date"},
	}

	stats, err := NewStatsService(registry).Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 5)

	for name, cs := range stats {
		assert.Zero(t, cs.TotalCount, "collection %s", name)
		assert.Empty(t, cs.OldestDate, "collection %s", name)
		assert.Empty(t, cs.NewestDate, "collection %s", name)
	}
}

func TestStatsReportsDateRangeAndProtection(t *testing.T) {
	matches := &fakeCollection{
		name:      "matches",
		protected: true,
		dateField: "utc_date",
		records:   []string{"2026-01-15", "2026-02-20", "2026-02-28"},
	}
	teamStats := &fakeCollection{name: "team_stats", records: []string{"", ""}}

	stats, err := NewStatsService(repository.RetentionRegistry{matches, teamStats}).Stats(context.Background())
	require.NoError(t, err)

	m := stats["matches"]
	assert.Equal(t, int64(3), m.TotalCount)
	assert.Equal(t, "2026-01-15", m.OldestDate)
	assert.Equal(t, "2026-02-28", m.NewestDate)
	assert.Equal(t, "protected - never cleaned", m.Protection)

	ts := stats["team_stats"]
	assert.Equal(t, int64(2), ts.TotalCount)
	assert.Empty(t, ts.OldestDate, "no date field registered")
	assert.Empty(t, ts.Protection)
}
