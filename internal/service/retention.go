package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-oracle/internal/logger"
	"github.com/yourusername/match-oracle/internal/metrics"
	"github.com/yourusername/match-oracle/internal/models"
	"github.com/yourusername/match-oracle/internal/repository"
)

const skippedNoDateField = "skipped - no date field found"
const skippedProtected = "skipped - protected collection"

// CleanupReport is the outcome of one retention sweep. CollectionsCleaned
// maps collection name to either a deletion count (int64) or a skip reason
// (string), matching the admin response shape.
type CleanupReport struct {
	CutoffDate          string                 `json:"cutoff_date"`
	DaysRetained        int                    `json:"days_retained"`
	CollectionsCleaned  map[string]interface{} `json:"collections_cleaned"`
	TotalRecordsDeleted int64                  `json:"total_records_deleted"`
}

// RetentionService sweeps cleanable collections past the retention horizon.
// Protected collections are never touched regardless of age.
type RetentionService struct {
	registry repository.RetentionRegistry
	audit    *logger.AuditLogger
	logger   *logrus.Logger
	now      func() time.Time
}

// NewRetentionService creates the retention service
func NewRetentionService(registry repository.RetentionRegistry, audit *logger.AuditLogger, log *logrus.Logger) *RetentionService {
	return &RetentionService{
		registry: registry,
		audit:    audit,
		logger:   log,
		now:      time.Now,
	}
}

// NewRetentionServiceWithClock creates a retention service with an injected
// clock for tests
func NewRetentionServiceWithClock(registry repository.RetentionRegistry, audit *logger.AuditLogger, log *logrus.Logger, now func() time.Time) *RetentionService {
	s := NewRetentionService(registry, audit, log)
	s.now = now
	return s
}

// Cleanup deletes records older than days from every cleanable collection.
// Best-effort per collection: one collection failing does not discard the
// counts already accumulated for the others. Idempotent for a fixed store:
// a second identical sweep deletes zero additional records.
func (s *RetentionService) Cleanup(ctx context.Context, days int) (*CleanupReport, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be >= 1, got %d", models.ErrValidation, days)
	}

	cutoff := s.now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	report := &CleanupReport{
		CutoffDate:         cutoff,
		DaysRetained:       days,
		CollectionsCleaned: make(map[string]interface{}, len(s.registry)),
	}

	for _, coll := range s.registry {
		name := coll.Name()
		switch {
		case coll.Protected():
			report.CollectionsCleaned[name] = skippedProtected
		case coll.DateField() == "":
			report.CollectionsCleaned[name] = skippedNoDateField
		default:
			deleted, err := coll.DeleteBefore(ctx, cutoff)
			if err != nil {
				s.logger.WithError(err).WithField("collection", name).Error("Retention sweep failed for collection")
				report.CollectionsCleaned[name] = fmt.Sprintf("error: %v", err)
				continue
			}
			report.CollectionsCleaned[name] = deleted
			report.TotalRecordsDeleted += deleted
			metrics.RecordRecordsSwept(name, deleted)
		}
	}

	s.audit.LogRetentionSweep(cutoff, days, int(report.TotalRecordsDeleted))
	s.logger.WithFields(logrus.Fields{
		"cutoff_date":   cutoff,
		"days_retained": days,
		"total_deleted": report.TotalRecordsDeleted,
	}).Info("Retention sweep complete")

	return report, nil
}
