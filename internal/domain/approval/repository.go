package approval

import (
	"context"
	"time"

	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ChangeRequestFilter defines filtering options for change request queries
type ChangeRequestFilter struct {
	shared.Filter
	Kind        *RequestKind   // Filter by request kind
	Status      *RequestStatus // Filter by status
	TargetID    *uuid.UUID     // Filter by target record
	RequestedBy *uuid.UUID     // Filter by requester
}

// ChangeRequestRepository defines the interface for change request persistence
type ChangeRequestRepository interface {
	// FindByID finds a change request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ChangeRequest, error)

	// FindAll finds change requests with filtering
	FindAll(ctx context.Context, filter ChangeRequestFilter) ([]ChangeRequest, error)

	// FindPendingByTarget finds pending requests against a target record
	FindPendingByTarget(ctx context.Context, targetID uuid.UUID) ([]ChangeRequest, error)

	// FindDue finds pending requests whose auto-approval deadline has passed
	FindDue(ctx context.Context, now time.Time) ([]ChangeRequest, error)

	// Save creates or updates a change request
	Save(ctx context.Context, request *ChangeRequest) error

	// SaveResolution persists a terminal transition conditionally: the update
	// only applies if the stored status is still PENDING. Returns
	// shared.ErrAlreadyResolved if another caller resolved the request first.
	SaveResolution(ctx context.Context, request *ChangeRequest) error

	// Count counts change requests matching the filter
	Count(ctx context.Context, filter ChangeRequestFilter) (int64, error)
}
