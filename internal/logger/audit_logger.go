// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// Security event types recorded on the audit trail.
const (
	EventAuthNotConfigured = "AUTH_NOT_CONFIGURED"
	EventAuthMissing       = "AUTH_MISSING"
	EventAuthInvalid       = "AUTH_INVALID"
	EventServerError       = "SERVER_ERROR"
	EventAdminAction       = "ADMIN_ACTION"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogSecurityEvent records an authentication or authorization event.
func (al *AuditLogger) LogSecurityEvent(eventType, details, clientIP, requestID string) {
	entry := al.WithFields(logrus.Fields{
		"event_type": eventType,
		"details":    details,
		"client_ip":  clientIP,
		"request_id": requestID,
	})
	if eventType == EventAuthNotConfigured || eventType == EventServerError {
		entry.Error("Security event recorded")
		return
	}
	entry.Warn("Security event recorded")
}

// LogAdminAction records a successful admin operation for the audit trail.
func (al *AuditLogger) LogAdminAction(action, clientIP, requestID string, details map[string]interface{}) {
	al.WithFields(logrus.Fields{
		"event_type": EventAdminAction,
		"action":     action,
		"client_ip":  clientIP,
		"request_id": requestID,
		"details":    details,
	}).Info("Admin action recorded")
}

// LogRetentionSweep records the outcome of a retention sweep.
func (al *AuditLogger) LogRetentionSweep(cutoffDate string, daysRetained, totalDeleted int) {
	al.WithFields(logrus.Fields{
		"cutoff_date":   cutoffDate,
		"days_retained": daysRetained,
		"total_deleted": totalDeleted,
	}).Info("Retention sweep recorded")
}
