package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/match-oracle/internal/logger"
	"github.com/yourusername/match-oracle/internal/models"
	"github.com/yourusername/match-oracle/internal/repository"
)

// fakeCollection implements repository.Collection over an in-memory record set
type fakeCollection struct {
	name      string
	protected bool
	dateField string
	records   []string // ISO dates
	failWith  error
}

func (c *fakeCollection) Name() string      { return c.name }
func (c *fakeCollection) Protected() bool   { return c.protected }
func (c *fakeCollection) DateField() string { return c.dateField }

func (c *fakeCollection) Count(ctx context.Context) (int64, error) {
	if c.failWith != nil {
		return 0, c.failWith
	}
	return int64(len(c.records)), nil
}

func (c *fakeCollection) DateRange(ctx context.Context) (string, string, error) {
	if c.failWith != nil {
		return "", "", c.failWith
	}
	if len(c.records) == 0 || c.dateField == "" {
		return "", "", nil
	}
	oldest, newest := c.records[0], c.records[0]
	for _, d := range c.records {
		if d < oldest {
			oldest = d
		}
		if d > newest {
			newest = d
		}
	}
	return oldest, newest, nil
}

func (c *fakeCollection) DeleteBefore(ctx context.Context, cutoffDate string) (int64, error) {
	if c.failWith != nil {
		return 0, c.failWith
	}
	var kept []string
	var deleted int64
	for _, d := range c.records {
		if d < cutoffDate {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	c.records = kept
	return deleted, nil
}

func datesBefore(base time.Time, daysAgo, count int) []string {
	dates := make([]string, count)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, -daysAgo).Format("2006-01-02")
	}
	return dates
}

func testRetention(registry repository.RetentionRegistry, now time.Time) *RetentionService {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewRetentionServiceWithClock(registry, logger.NewAuditLogger(log), log, func() time.Time { return now })
}

func TestCleanupDocumentedExample(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fixtures := &fakeCollection{name: "fixtures", dateField: "fixture_date", records: datesBefore(now, 30, 150)}
	predictions := &fakeCollection{name: "predictions", dateField: "created_at", records: datesBefore(now, 10, 200)}
	teamStats := &fakeCollection{name: "team_stats", records: []string{"", "", ""}}

	svc := testRetention(repository.RetentionRegistry{fixtures, predictions, teamStats}, now)

	report, err := svc.Cleanup(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "2026-02-22", report.CutoffDate)
	assert.Equal(t, 7, report.DaysRetained)
	assert.Equal(t, int64(350), report.TotalRecordsDeleted)
	assert.Equal(t, int64(150), report.CollectionsCleaned["fixtures"])
	assert.Equal(t, int64(200), report.CollectionsCleaned["predictions"])
	assert.Equal(t, "skipped - no date field found", report.CollectionsCleaned["team_stats"])
}

func TestCleanupIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	predictions := &fakeCollection{name: "predictions", dateField: "created_at", records: datesBefore(now, 10, 20)}
	svc := testRetention(repository.RetentionRegistry{predictions}, now)

	first, err := svc.Cleanup(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(20), first.TotalRecordsDeleted)

	second, err := svc.Cleanup(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, second.TotalRecordsDeleted, "repeat sweep on an unchanged store deletes nothing")
}

func TestCleanupProtectedCollectionsUntouched(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	matches := &fakeCollection{name: "matches", protected: true, dateField: "utc_date", records: datesBefore(now, 365, 50)}
	svc := testRetention(repository.RetentionRegistry{matches}, now)

	report, err := svc.Cleanup(context.Background(), 1)
	require.NoError(t, err)

	assert.Zero(t, report.TotalRecordsDeleted)
	assert.Len(t, matches.records, 50, "protected records survive regardless of age")
	assert.Equal(t, "skipped - protected collection", report.CollectionsCleaned["matches"])
}

func TestCleanupRejectsInvalidDays(t *testing.T) {
	svc := testRetention(repository.RetentionRegistry{}, time.Now())

	for _, days := range []int{0, -1, -100} {
		_, err := svc.Cleanup(context.Background(), days)
		assert.ErrorIs(t, err, models.ErrValidation)
	}
}

func TestCleanupBestEffortAcrossCollections(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	broken := &fakeCollection{name: "fixtures", dateField: "fixture_date", failWith: errors.New("connection reset")}
	healthy := &fakeCollection{name: "predictions", dateField: "created_at", records: datesBefore(now, 10, 5)}
	svc := testRetention(repository.RetentionRegistry{broken, healthy}, now)

	report, err := svc.Cleanup(context.Background(), 7)
	require.NoError(t, err, "one failing collection must not fail the sweep")

	assert.Equal(t, int64(5), report.TotalRecordsDeleted)
	assert.Contains(t, report.CollectionsCleaned["fixtures"], "error:")
	assert.Equal(t, int64(5), report.CollectionsCleaned["predictions"])
}
