package service

import (
	"context"

	"github.com/yourusername/match-oracle/internal/metrics"
	"github.com/yourusername/match-oracle/internal/repository"
)

const protectionNote = "protected - never cleaned"

// CollectionStats summarizes one collection for the admin stats view.
// Date fields are omitted for collections without a registered date field or
// with no records.
type CollectionStats struct {
	TotalCount int64  `json:"total_count"`
	OldestDate string `json:"oldest_date,omitempty"`
	NewestDate string `json:"newest_date,omitempty"`
	Protection string `json:"protection,omitempty"`
}

// StatsService reports per-collection storage statistics
type StatsService struct {
	registry repository.RetentionRegistry
}

// NewStatsService creates the stats service
func NewStatsService(registry repository.RetentionRegistry) *StatsService {
	return &StatsService{registry: registry}
}

// Stats builds the per-collection report. A failing collection aborts the
// report: partial stats would misrepresent the store.
func (s *StatsService) Stats(ctx context.Context) (map[string]*CollectionStats, error) {
	out := make(map[string]*CollectionStats, len(s.registry))

	for _, coll := range s.registry {
		count, err := coll.Count(ctx)
		if err != nil {
			return nil, err
		}

		cs := &CollectionStats{TotalCount: count}
		if coll.DateField() != "" && count > 0 {
			oldest, newest, err := coll.DateRange(ctx)
			if err != nil {
				return nil, err
			}
			cs.OldestDate = oldest
			cs.NewestDate = newest
		}
		if coll.Protected() {
			cs.Protection = protectionNote
		}
		if coll.Name() == "matches" {
			metrics.UpdateCachedMatches(count)
		}

		out[coll.Name()] = cs
	}

	return out, nil
}
