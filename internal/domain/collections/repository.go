package collections

import (
	"context"
	"time"

	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CollectionFilter defines filtering options for collection queries
type CollectionFilter struct {
	shared.Filter
	CustomerID     *uuid.UUID        // Filter by customer
	Status         *CollectionStatus // Filter by status
	AssignedTo     *uuid.UUID        // Filter by assigned agent
	Overdue        *bool             // Filter only overdue collections
	DueFrom        *time.Time        // Filter by due date range start
	DueTo          *time.Time        // Filter by due date range end
	MinOutstanding *int64            // Filter by minimum outstanding amount
	MaxOutstanding *int64            // Filter by maximum outstanding amount
}

// CollectionRepository defines the interface for collection persistence
type CollectionRepository interface {
	// FindByID finds a collection by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Collection, error)

	// FindByInvoiceNumber finds a collection by its invoice number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Collection, error)

	// FindAll finds collections with filtering
	FindAll(ctx context.Context, filter CollectionFilter) ([]Collection, error)

	// FindOpen finds all collections in a non-terminal, non-disputed status,
	// for the aging sweep
	FindOpen(ctx context.Context) ([]Collection, error)

	// Save creates or updates a collection
	Save(ctx context.Context, collection *Collection) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, collection *Collection) error

	// Count counts collections matching the filter
	Count(ctx context.Context, filter CollectionFilter) (int64, error)

	// SumOutstanding calculates the total open balance across collections
	SumOutstanding(ctx context.Context) (int64, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	CollectionID *uuid.UUID     // Filter by collection
	Status       *PaymentStatus // Filter by status
	RecordedBy   *uuid.UUID     // Filter by recorder
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByCollection finds payments recorded against a collection
	FindByCollection(ctx context.Context, collectionID uuid.UUID) ([]Payment, error)

	// FindAll finds payments with filtering
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveResolution persists a terminal transition conditionally: the update
	// only applies if the stored status is still PENDING_APPROVAL. Returns
	// shared.ErrAlreadyResolved if another caller resolved the payment first.
	SaveResolution(ctx context.Context, payment *Payment) error

	// Delete removes a payment record
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommunicationLogRepository defines the interface for communication log persistence
type CommunicationLogRepository interface {
	// FindByID finds a communication log by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CommunicationLog, error)

	// FindByCollection finds logs recorded against a collection
	FindByCollection(ctx context.Context, collectionID uuid.UUID) ([]CommunicationLog, error)

	// Save creates or updates a communication log
	Save(ctx context.Context, log *CommunicationLog) error

	// Delete removes a communication log
	Delete(ctx context.Context, id uuid.UUID) error
}
