package collections

import (
	"fmt"
	"strings"
	"time"

	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentStatus represents the approval status of a recorded payment
type PaymentStatus string

const (
	PaymentStatusPendingApproval PaymentStatus = "PENDING_APPROVAL" // Awaiting a second pair of eyes
	PaymentStatusApproved        PaymentStatus = "APPROVED"         // Approved and applied to the ledger
	PaymentStatusRejected        PaymentStatus = "REJECTED"         // Rejected; never touched the ledger
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPendingApproval, PaymentStatusApproved, PaymentStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the payment has been resolved.
// A payment reaches exactly one terminal status in its lifetime.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected
}

// PaymentMode represents how a payment was made
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "CASH"
	PaymentModeCheque       PaymentMode = "CHEQUE"
	PaymentModeBankTransfer PaymentMode = "BANK_TRANSFER"
	PaymentModeUPI          PaymentMode = "UPI"
	PaymentModeCard         PaymentMode = "CARD"
	PaymentModeOther        PaymentMode = "OTHER"
)

// IsValid checks if the payment mode is valid
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeCheque, PaymentModeBankTransfer,
		PaymentModeUPI, PaymentModeCard, PaymentModeOther:
		return true
	}
	return false
}

// Payment is the aggregate root for a payment recorded against a collection.
// The amount is an integer in minor currency units.
type Payment struct {
	shared.BaseAggregateRoot
	CollectionID    uuid.UUID
	Amount          int64
	Mode            PaymentMode
	PaymentDate     time.Time
	ReferenceNumber string
	Status          PaymentStatus
	RecordedBy      uuid.UUID
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	RejectionReason string
}

func newPayment(
	collectionID uuid.UUID,
	amount int64,
	mode PaymentMode,
	paymentDate time.Time,
	referenceNumber string,
	recordedBy uuid.UUID,
) (*Payment, error) {
	if collectionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COLLECTION", "Collection ID cannot be empty")
	}
	if amount <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", "Payment mode is not valid")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment date is required")
	}
	if recordedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Recorder ID cannot be empty")
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CollectionID:      collectionID,
		Amount:            amount,
		Mode:              mode,
		PaymentDate:       paymentDate,
		ReferenceNumber:   referenceNumber,
		RecordedBy:        recordedBy,
	}, nil
}

// NewPendingPayment creates a payment awaiting dual-control approval.
// The ledger is not touched until an approver resolves it.
func NewPendingPayment(
	collectionID uuid.UUID,
	amount int64,
	mode PaymentMode,
	paymentDate time.Time,
	referenceNumber string,
	recordedBy uuid.UUID,
) (*Payment, error) {
	p, err := newPayment(collectionID, amount, mode, paymentDate, referenceNumber, recordedBy)
	if err != nil {
		return nil, err
	}
	p.Status = PaymentStatusPendingApproval
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// NewApprovedPayment creates a payment already approved by a privileged
// recorder. The pending state is never observable for these payments.
func NewApprovedPayment(
	collectionID uuid.UUID,
	amount int64,
	mode PaymentMode,
	paymentDate time.Time,
	referenceNumber string,
	recordedBy uuid.UUID,
) (*Payment, error) {
	p, err := newPayment(collectionID, amount, mode, paymentDate, referenceNumber, recordedBy)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	p.Status = PaymentStatusApproved
	p.ApprovedBy = &recordedBy
	p.ApprovedAt = &now
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	p.AddDomainEvent(NewPaymentApprovedEvent(p))
	return p, nil
}

// Approve transitions the payment from pending approval to approved
func (p *Payment) Approve(approvedBy uuid.UUID) error {
	if p.Status != PaymentStatusPendingApproval {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot approve payment in %s status", p.Status))
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approver ID cannot be empty")
	}

	now := time.Now()
	p.Status = PaymentStatusApproved
	p.ApprovedBy = &approvedBy
	p.ApprovedAt = &now

	p.AddDomainEvent(NewPaymentApprovedEvent(p))

	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// Reject transitions the payment from pending approval to rejected.
// Rejected payments never affect the collection ledger.
func (p *Payment) Reject(rejectedBy uuid.UUID, reason string) error {
	if p.Status != PaymentStatusPendingApproval {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reject payment in %s status", p.Status))
	}
	if rejectedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approver ID cannot be empty")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Rejection reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusRejected
	p.ApprovedBy = &rejectedBy
	p.ApprovedAt = &now
	p.RejectionReason = reason

	p.AddDomainEvent(NewPaymentRejectedEvent(p))

	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// IsPending returns true if the payment still awaits approval
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPendingApproval
}

// IsApproved returns true if the payment was approved
func (p *Payment) IsApproved() bool {
	return p.Status == PaymentStatusApproved
}
