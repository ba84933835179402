package approval

import (
	"fmt"
	"strings"
	"time"

	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RequestKind tags what a change request proposes to do. Edits and
// deletions are distinct kinds sharing the same approval mechanics;
// delete requests carry only the original snapshot.
type RequestKind string

const (
	KindPaymentEdit         RequestKind = "PAYMENT_EDIT"
	KindCommunicationEdit   RequestKind = "COMMUNICATION_EDIT"
	KindPaymentDelete       RequestKind = "PAYMENT_DELETE"
	KindCommunicationDelete RequestKind = "COMMUNICATION_DELETE"
)

// IsValid checks if the kind is a valid RequestKind
func (k RequestKind) IsValid() bool {
	switch k {
	case KindPaymentEdit, KindCommunicationEdit, KindPaymentDelete, KindCommunicationDelete:
		return true
	}
	return false
}

// String returns the string representation of RequestKind
func (k RequestKind) String() string {
	return string(k)
}

// IsDelete returns true for the deletion kinds
func (k RequestKind) IsDelete() bool {
	return k == KindPaymentDelete || k == KindCommunicationDelete
}

// TargetsPayment returns true if the request targets a payment
func (k RequestKind) TargetsPayment() bool {
	return k == KindPaymentEdit || k == KindPaymentDelete
}

// RequestStatus represents the lifecycle status of a change request
type RequestStatus string

const (
	RequestStatusPending      RequestStatus = "PENDING"
	RequestStatusApproved     RequestStatus = "APPROVED"      // Resolved by a human approver
	RequestStatusRejected     RequestStatus = "REJECTED"      // Resolved by a human approver
	RequestStatusAutoApproved RequestStatus = "AUTO_APPROVED" // Resolved by the timeout sweep
)

// IsValid checks if the status is a valid RequestStatus
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusAutoApproved:
		return true
	}
	return false
}

// String returns the string representation of RequestStatus
func (s RequestStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the request has been resolved. The three
// terminal statuses are mutually exclusive; a request reaches exactly one.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected || s == RequestStatusAutoApproved
}

// ChangeRequest is the aggregate root for a dual-control change proposal
// against a payment or communication log. It snapshots the original values
// of exactly the fields being changed, carries the proposed values, and is
// resolved exactly once: by a human approval/rejection or by the timeout
// sweep once AutoApproveAt has passed.
type ChangeRequest struct {
	shared.BaseAggregateRoot
	Kind            RequestKind
	TargetID        uuid.UUID
	Original        FieldSet
	Proposed        FieldSet
	Reason          string
	RequestedBy     uuid.UUID
	Status          RequestStatus
	AutoApproveAt   time.Time
	ResolvedBy      *uuid.UUID
	ResolvedAt      *time.Time
	RejectionReason string
}

func newChangeRequest(
	kind RequestKind,
	targetID uuid.UUID,
	original FieldSet,
	proposed FieldSet,
	reason string,
	requestedBy uuid.UUID,
	window time.Duration,
) (*ChangeRequest, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Request kind is not valid")
	}
	if targetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARGET", "Target ID cannot be empty")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Change reason is required")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Requester ID cannot be empty")
	}
	if window <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Auto-approval window must be positive")
	}

	cr := &ChangeRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		TargetID:          targetID,
		Original:          original,
		Proposed:          proposed,
		Reason:            reason,
		RequestedBy:       requestedBy,
		Status:            RequestStatusPending,
		AutoApproveAt:     time.Now().Add(window),
	}

	cr.AddDomainEvent(NewChangeRequestCreatedEvent(cr))

	return cr, nil
}

// NewEditRequest creates a pending edit request. The original snapshot must
// cover exactly the fields present in the proposal.
func NewEditRequest(
	kind RequestKind,
	targetID uuid.UUID,
	original FieldSet,
	proposed FieldSet,
	reason string,
	requestedBy uuid.UUID,
	window time.Duration,
) (*ChangeRequest, error) {
	if kind.IsDelete() {
		return nil, shared.NewDomainError("INVALID_KIND", "Edit request cannot use a deletion kind")
	}
	if len(proposed) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Edit request must propose at least one field change")
	}
	for field := range proposed {
		if _, ok := original[field]; !ok {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Missing original snapshot for proposed field %q", field))
		}
	}
	return newChangeRequest(kind, targetID, original, proposed, reason, requestedBy, window)
}

// NewDeleteRequest creates a pending deletion request. The original snapshot
// preserves the record being removed; there are no proposed values.
func NewDeleteRequest(
	kind RequestKind,
	targetID uuid.UUID,
	original FieldSet,
	reason string,
	requestedBy uuid.UUID,
	window time.Duration,
) (*ChangeRequest, error) {
	if !kind.IsDelete() {
		return nil, shared.NewDomainError("INVALID_KIND", "Delete request must use a deletion kind")
	}
	return newChangeRequest(kind, targetID, original, nil, reason, requestedBy, window)
}

// Approve resolves the request as approved by a human
func (cr *ChangeRequest) Approve(approvedBy uuid.UUID) error {
	if cr.Status != RequestStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot approve change request in %s status", cr.Status))
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approver ID cannot be empty")
	}

	now := time.Now()
	cr.Status = RequestStatusApproved
	cr.ResolvedBy = &approvedBy
	cr.ResolvedAt = &now

	cr.AddDomainEvent(NewChangeRequestResolvedEvent(cr))

	cr.UpdatedAt = now
	cr.IncrementVersion()

	return nil
}

// Reject resolves the request as rejected by a human
func (cr *ChangeRequest) Reject(rejectedBy uuid.UUID, reason string) error {
	if cr.Status != RequestStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reject change request in %s status", cr.Status))
	}
	if rejectedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approver ID cannot be empty")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Rejection reason is required")
	}

	now := time.Now()
	cr.Status = RequestStatusRejected
	cr.ResolvedBy = &rejectedBy
	cr.ResolvedAt = &now
	cr.RejectionReason = reason

	cr.AddDomainEvent(NewChangeRequestResolvedEvent(cr))

	cr.UpdatedAt = now
	cr.IncrementVersion()

	return nil
}

// AutoApprove resolves the request as auto-approved by the timeout sweep.
// It is only legal once the deadline has passed.
func (cr *ChangeRequest) AutoApprove(now time.Time) error {
	if cr.Status != RequestStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot auto-approve change request in %s status", cr.Status))
	}
	if now.Before(cr.AutoApproveAt) {
		return shared.NewDomainError("INVALID_STATE", "Change request auto-approval deadline has not passed")
	}

	cr.Status = RequestStatusAutoApproved
	cr.ResolvedAt = &now

	cr.AddDomainEvent(NewChangeRequestResolvedEvent(cr))

	cr.UpdatedAt = now
	cr.IncrementVersion()

	return nil
}

// IsDue returns true if the pending request has passed its deadline
func (cr *ChangeRequest) IsDue(now time.Time) bool {
	return cr.Status == RequestStatusPending && !now.Before(cr.AutoApproveAt)
}
