package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEvent records who did what to which resource, and how it went.
type AuditEvent struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Action   string    `json:"action"`   // e.g. "UPLOAD", "READ", "API_ERROR"
	Resource string    `json:"resource"` // e.g. "s3_file:cleaned_gen23.csv"
	Status   string    `json:"status"`   // "SUCCESS" or "FAILURE"
	Details  string    `json:"details,omitempty"`
	Time     time.Time `json:"time"`
}

// NewAuditEvent builds an audit event stamped with the package clock.
func NewAuditEvent(userID, action, resource, status, details string) AuditEvent {
	return AuditEvent{
		ID:       uuid.NewString(),
		UserID:   userID,
		Action:   action,
		Resource: resource,
		Status:   status,
		Details:  details,
		Time:     clock.Now(),
	}
}

// AuditSink receives audit events. Implementations must be safe for
// concurrent use; recording is best-effort and must never block a request
// beyond its own context.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent) error
}
