package collections

import (
	"time"

	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentRecordedEvent is raised when a payment is first recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID    uuid.UUID     `json:"payment_id"`
	CollectionID uuid.UUID     `json:"collection_id"`
	Amount       int64         `json:"amount"`
	Mode         PaymentMode   `json:"mode"`
	Status       PaymentStatus `json:"status"`
	RecordedBy   uuid.UUID     `json:"recorded_by"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRecorded", "Payment", p.ID),
		PaymentID:       p.ID,
		CollectionID:    p.CollectionID,
		Amount:          p.Amount,
		Mode:            p.Mode,
		Status:          p.Status,
		RecordedBy:      p.RecordedBy,
	}
}

// PaymentApprovedEvent is raised when a payment is approved
type PaymentApprovedEvent struct {
	shared.BaseDomainEvent
	PaymentID    uuid.UUID `json:"payment_id"`
	CollectionID uuid.UUID `json:"collection_id"`
	Amount       int64     `json:"amount"`
	ApprovedBy   uuid.UUID `json:"approved_by"`
	ApprovedAt   time.Time `json:"approved_at"`
}

// EventType returns the event type name
func (e *PaymentApprovedEvent) EventType() string {
	return "PaymentApproved"
}

// NewPaymentApprovedEvent creates a new PaymentApprovedEvent
func NewPaymentApprovedEvent(p *Payment) *PaymentApprovedEvent {
	e := &PaymentApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentApproved", "Payment", p.ID),
		PaymentID:       p.ID,
		CollectionID:    p.CollectionID,
		Amount:          p.Amount,
	}
	if p.ApprovedBy != nil {
		e.ApprovedBy = *p.ApprovedBy
	}
	if p.ApprovedAt != nil {
		e.ApprovedAt = *p.ApprovedAt
	}
	return e
}

// PaymentRejectedEvent is raised when a payment is rejected
type PaymentRejectedEvent struct {
	shared.BaseDomainEvent
	PaymentID    uuid.UUID `json:"payment_id"`
	CollectionID uuid.UUID `json:"collection_id"`
	Amount       int64     `json:"amount"`
	RejectedBy   uuid.UUID `json:"rejected_by"`
	Reason       string    `json:"reason"`
}

// EventType returns the event type name
func (e *PaymentRejectedEvent) EventType() string {
	return "PaymentRejected"
}

// NewPaymentRejectedEvent creates a new PaymentRejectedEvent
func NewPaymentRejectedEvent(p *Payment) *PaymentRejectedEvent {
	e := &PaymentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRejected", "Payment", p.ID),
		PaymentID:       p.ID,
		CollectionID:    p.CollectionID,
		Amount:          p.Amount,
		Reason:          p.RejectionReason,
	}
	if p.ApprovedBy != nil {
		e.RejectedBy = *p.ApprovedBy
	}
	return e
}
