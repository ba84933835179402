package collections

import (
	"context"
	"time"

	"github.com/arcollect/backend/internal/domain/approval"
	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/google/uuid"
)

// Notifier delivers fire-and-forget notifications. Implementations must not
// block the caller; a failed notification never rolls back the operation that
// triggered it.
type Notifier interface {
	// PaymentPendingApproval notifies approvers that a payment awaits review
	PaymentPendingApproval(ctx context.Context, collection *collections.Collection, payment *collections.Payment)

	// PaymentApproved notifies the recorder that their payment was approved
	PaymentApproved(ctx context.Context, collection *collections.Collection, payment *collections.Payment)

	// PaymentRejected notifies the recorder that their payment was rejected
	PaymentRejected(ctx context.Context, collection *collections.Collection, payment *collections.Payment)

	// ChangeRequestPending notifies approvers that a change request awaits review
	ChangeRequestPending(ctx context.Context, request *approval.ChangeRequest)

	// ChangeRequestResolved notifies the requester of the outcome
	ChangeRequestResolved(ctx context.Context, request *approval.ChangeRequest)

	// CollectionOverdue reminds the assigned agent about an overdue collection
	CollectionOverdue(ctx context.Context, collection *collections.Collection)
}

// ReminderThrottle rate-limits repeated reminders for the same key.
// Allow reports whether a reminder may be sent now; a positive answer
// starts the suppression window for that key.
type ReminderThrottle interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}

// AuditEntry is one record in the audit trail
type AuditEntry struct {
	Actor      uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Detail     map[string]any
}

// AuditLogger records audit entries best-effort: failures are logged by the
// implementation, never surfaced to the caller.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}
