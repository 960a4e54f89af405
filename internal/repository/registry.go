package repository

import "context"

// Collection exposes the per-collection operations the retention sweeper and
// stats reporter need. Protected collections are immune to deletion
// regardless of age; the sweeper must check Protected before ever calling
// DeleteBefore.
type Collection interface {
	Name() string
	Protected() bool
	// DateField names the column retention compares against. Empty means the
	// collection carries no date and is skipped by the sweeper.
	DateField() string
	Count(ctx context.Context) (int64, error)
	// DateRange reports the oldest and newest values of the date field in ISO
	// form. Both are empty for an empty collection or one without a date field.
	DateRange(ctx context.Context) (oldest, newest string, err error)
	// DeleteBefore removes records whose date field is strictly before the
	// ISO cutoff date and returns the number deleted.
	DeleteBefore(ctx context.Context, cutoffDate string) (int64, error)
}

// RetentionRegistry lists every collection in sweep order.
type RetentionRegistry []Collection

// NewRetentionRegistry builds the registry from the repository set.
// Competitions and matches are protected; team stats carry no date field;
// predictions and legacy fixtures are cleanable.
func NewRetentionRegistry(repos *Repositories) RetentionRegistry {
	return RetentionRegistry{
		repos.Competition,
		repos.Match,
		repos.TeamStats,
		repos.Prediction,
		repos.Fixture,
	}
}
