package collections

import (
	"time"

	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CollectionCreatedEvent is raised when a new collection record is created
type CollectionCreatedEvent struct {
	shared.BaseDomainEvent
	CollectionID   uuid.UUID `json:"collection_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	CustomerName   string    `json:"customer_name"`
	InvoiceNumber  string    `json:"invoice_number"`
	OriginalAmount int64     `json:"original_amount"`
	DueDate        time.Time `json:"due_date"`
}

// EventType returns the event type name
func (e *CollectionCreatedEvent) EventType() string {
	return "CollectionCreated"
}

// NewCollectionCreatedEvent creates a new CollectionCreatedEvent
func NewCollectionCreatedEvent(c *Collection) *CollectionCreatedEvent {
	return &CollectionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CollectionCreated", "Collection", c.ID),
		CollectionID:    c.ID,
		CustomerID:      c.CustomerID,
		CustomerName:    c.CustomerName,
		InvoiceNumber:   c.InvoiceNumber,
		OriginalAmount:  c.OriginalAmount,
		DueDate:         c.DueDate,
	}
}

// CollectionPartiallyPaidEvent is raised when a payment leaves an open balance
type CollectionPartiallyPaidEvent struct {
	shared.BaseDomainEvent
	CollectionID      uuid.UUID `json:"collection_id"`
	InvoiceNumber     string    `json:"invoice_number"`
	AppliedAmount     int64     `json:"applied_amount"`
	OutstandingAmount int64     `json:"outstanding_amount"`
	PaidAmount        int64     `json:"paid_amount"`
}

// EventType returns the event type name
func (e *CollectionPartiallyPaidEvent) EventType() string {
	return "CollectionPartiallyPaid"
}

// NewCollectionPartiallyPaidEvent creates a new CollectionPartiallyPaidEvent
func NewCollectionPartiallyPaidEvent(c *Collection, applied int64) *CollectionPartiallyPaidEvent {
	return &CollectionPartiallyPaidEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("CollectionPartiallyPaid", "Collection", c.ID),
		CollectionID:      c.ID,
		InvoiceNumber:     c.InvoiceNumber,
		AppliedAmount:     applied,
		OutstandingAmount: c.OutstandingAmount,
		PaidAmount:        c.PaidAmount,
	}
}

// CollectionPaidEvent is raised when a collection is fully settled
type CollectionPaidEvent struct {
	shared.BaseDomainEvent
	CollectionID  uuid.UUID `json:"collection_id"`
	InvoiceNumber string    `json:"invoice_number"`
	PaidAmount    int64     `json:"paid_amount"`
	PaidAt        time.Time `json:"paid_at"`
}

// EventType returns the event type name
func (e *CollectionPaidEvent) EventType() string {
	return "CollectionPaid"
}

// NewCollectionPaidEvent creates a new CollectionPaidEvent
func NewCollectionPaidEvent(c *Collection) *CollectionPaidEvent {
	paidAt := time.Now()
	if c.PaidAt != nil {
		paidAt = *c.PaidAt
	}
	return &CollectionPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CollectionPaid", "Collection", c.ID),
		CollectionID:    c.ID,
		InvoiceNumber:   c.InvoiceNumber,
		PaidAmount:      c.PaidAmount,
		PaidAt:          paidAt,
	}
}

// CollectionPaymentReversedEvent is raised when an applied payment is backed out
type CollectionPaymentReversedEvent struct {
	shared.BaseDomainEvent
	CollectionID      uuid.UUID `json:"collection_id"`
	ReversedAmount    int64     `json:"reversed_amount"`
	OutstandingAmount int64     `json:"outstanding_amount"`
}

// EventType returns the event type name
func (e *CollectionPaymentReversedEvent) EventType() string {
	return "CollectionPaymentReversed"
}

// NewCollectionPaymentReversedEvent creates a new CollectionPaymentReversedEvent
func NewCollectionPaymentReversedEvent(c *Collection, reversed int64) *CollectionPaymentReversedEvent {
	return &CollectionPaymentReversedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("CollectionPaymentReversed", "Collection", c.ID),
		CollectionID:      c.ID,
		ReversedAmount:    reversed,
		OutstandingAmount: c.OutstandingAmount,
	}
}

// CollectionOverdueEvent is raised when the aging sweep promotes a collection to overdue
type CollectionOverdueEvent struct {
	shared.BaseDomainEvent
	CollectionID      uuid.UUID `json:"collection_id"`
	InvoiceNumber     string    `json:"invoice_number"`
	AgingDays         int       `json:"aging_days"`
	OutstandingAmount int64     `json:"outstanding_amount"`
}

// EventType returns the event type name
func (e *CollectionOverdueEvent) EventType() string {
	return "CollectionOverdue"
}

// NewCollectionOverdueEvent creates a new CollectionOverdueEvent
func NewCollectionOverdueEvent(c *Collection) *CollectionOverdueEvent {
	return &CollectionOverdueEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("CollectionOverdue", "Collection", c.ID),
		CollectionID:      c.ID,
		InvoiceNumber:     c.InvoiceNumber,
		AgingDays:         c.AgingDays,
		OutstandingAmount: c.OutstandingAmount,
	}
}

// CollectionDisputedEvent is raised when a dispute is recorded
type CollectionDisputedEvent struct {
	shared.BaseDomainEvent
	CollectionID uuid.UUID `json:"collection_id"`
	Reason       string    `json:"reason"`
	RaisedBy     uuid.UUID `json:"raised_by"`
}

// EventType returns the event type name
func (e *CollectionDisputedEvent) EventType() string {
	return "CollectionDisputed"
}

// NewCollectionDisputedEvent creates a new CollectionDisputedEvent
func NewCollectionDisputedEvent(c *Collection, raisedBy uuid.UUID) *CollectionDisputedEvent {
	return &CollectionDisputedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CollectionDisputed", "Collection", c.ID),
		CollectionID:    c.ID,
		Reason:          c.DisputeReason,
		RaisedBy:        raisedBy,
	}
}

// CollectionWrittenOffEvent is raised when a collection is retired
type CollectionWrittenOffEvent struct {
	shared.BaseDomainEvent
	CollectionID      uuid.UUID `json:"collection_id"`
	Reason            string    `json:"reason"`
	WrittenOffBy      uuid.UUID `json:"written_off_by"`
	OutstandingAmount int64     `json:"outstanding_amount"`
}

// EventType returns the event type name
func (e *CollectionWrittenOffEvent) EventType() string {
	return "CollectionWrittenOff"
}

// NewCollectionWrittenOffEvent creates a new CollectionWrittenOffEvent
func NewCollectionWrittenOffEvent(c *Collection, writtenOffBy uuid.UUID) *CollectionWrittenOffEvent {
	return &CollectionWrittenOffEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("CollectionWrittenOff", "Collection", c.ID),
		CollectionID:      c.ID,
		Reason:            c.WriteOffReason,
		WrittenOffBy:      writtenOffBy,
		OutstandingAmount: c.OutstandingAmount,
	}
}
