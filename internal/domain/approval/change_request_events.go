package approval

import (
	"time"

	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ChangeRequestCreatedEvent is raised when a change request enters the queue
type ChangeRequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID   `json:"request_id"`
	Kind          RequestKind `json:"kind"`
	TargetID      uuid.UUID   `json:"target_id"`
	RequestedBy   uuid.UUID   `json:"requested_by"`
	AutoApproveAt time.Time   `json:"auto_approve_at"`
}

// EventType returns the event type name
func (e *ChangeRequestCreatedEvent) EventType() string {
	return "ChangeRequestCreated"
}

// NewChangeRequestCreatedEvent creates a new ChangeRequestCreatedEvent
func NewChangeRequestCreatedEvent(cr *ChangeRequest) *ChangeRequestCreatedEvent {
	return &ChangeRequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ChangeRequestCreated", "ChangeRequest", cr.ID),
		RequestID:       cr.ID,
		Kind:            cr.Kind,
		TargetID:        cr.TargetID,
		RequestedBy:     cr.RequestedBy,
		AutoApproveAt:   cr.AutoApproveAt,
	}
}

// ChangeRequestResolvedEvent is raised when a change request reaches a
// terminal status, whether by a human or by the timeout sweep
type ChangeRequestResolvedEvent struct {
	shared.BaseDomainEvent
	RequestID  uuid.UUID     `json:"request_id"`
	Kind       RequestKind   `json:"kind"`
	TargetID   uuid.UUID     `json:"target_id"`
	Status     RequestStatus `json:"status"`
	ResolvedBy uuid.UUID     `json:"resolved_by,omitempty"`
}

// EventType returns the event type name
func (e *ChangeRequestResolvedEvent) EventType() string {
	return "ChangeRequestResolved"
}

// NewChangeRequestResolvedEvent creates a new ChangeRequestResolvedEvent
func NewChangeRequestResolvedEvent(cr *ChangeRequest) *ChangeRequestResolvedEvent {
	e := &ChangeRequestResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ChangeRequestResolved", "ChangeRequest", cr.ID),
		RequestID:       cr.ID,
		Kind:            cr.Kind,
		TargetID:        cr.TargetID,
		Status:          cr.Status,
	}
	if cr.ResolvedBy != nil {
		e.ResolvedBy = *cr.ResolvedBy
	}
	return e
}
