package collections

import (
	"fmt"
	"strings"
	"time"

	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectionStatus represents the status of a collection record
type CollectionStatus string

const (
	CollectionStatusPending    CollectionStatus = "PENDING"     // Unpaid, outstanding balance equals original
	CollectionStatusPartial    CollectionStatus = "PARTIAL"     // Partially paid, 0 < outstanding < original
	CollectionStatusPaid       CollectionStatus = "PAID"        // Fully paid, outstanding = 0
	CollectionStatusOverdue    CollectionStatus = "OVERDUE"     // Past due date with an open balance
	CollectionStatusDisputed   CollectionStatus = "DISPUTED"    // Customer has contested the invoice
	CollectionStatusWrittenOff CollectionStatus = "WRITTEN_OFF" // Retired; no further ledger activity
)

// IsValid checks if the status is a valid CollectionStatus
func (s CollectionStatus) IsValid() bool {
	switch s {
	case CollectionStatusPending, CollectionStatusPartial, CollectionStatusPaid,
		CollectionStatusOverdue, CollectionStatusDisputed, CollectionStatusWrittenOff:
		return true
	}
	return false
}

// String returns the string representation of CollectionStatus
func (s CollectionStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the collection is in a terminal state.
// Collections are never physically deleted; write-off is the only retirement.
func (s CollectionStatus) IsTerminal() bool {
	return s == CollectionStatusWrittenOff
}

// CanApplyPayment returns true if payments can be applied in this status
func (s CollectionStatus) CanApplyPayment() bool {
	switch s {
	case CollectionStatusPending, CollectionStatusPartial, CollectionStatusOverdue:
		return true
	}
	return false
}

// maxEscalationLevel bounds how far a collection can be escalated
const maxEscalationLevel = 3

// Collection is the aggregate root for an accounts-receivable record.
// It owns the monetary invariant: after every successful ledger operation,
// OriginalAmount == OutstandingAmount + PaidAmount and OutstandingAmount >= 0.
// All amounts are integers in minor currency units.
type Collection struct {
	shared.BaseAggregateRoot
	CustomerID        uuid.UUID
	CustomerName      string
	InvoiceNumber     string
	InvoiceDate       time.Time
	DueDate           time.Time
	OriginalAmount    int64
	OutstandingAmount int64
	PaidAmount        int64
	Status            CollectionStatus
	AgingDays         int
	AssignedTo        *uuid.UUID
	EscalationLevel   int
	DisputeRaisedAt   *time.Time
	DisputeReason     string
	PromisedAmount    *int64
	PromisedDate      *time.Time
	WrittenOffAt      *time.Time
	WriteOffReason    string
	PaidAt            *time.Time
}

// NewCollection creates a new collection record for an invoice
func NewCollection(
	customerID uuid.UUID,
	customerName string,
	invoiceNumber string,
	invoiceDate time.Time,
	dueDate time.Time,
	originalAmount int64,
) (*Collection, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if originalAmount <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Original amount must be positive")
	}
	if dueDate.Before(invoiceDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before invoice date")
	}

	c := &Collection{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		CustomerName:      customerName,
		InvoiceNumber:     invoiceNumber,
		InvoiceDate:       invoiceDate,
		DueDate:           dueDate,
		OriginalAmount:    originalAmount,
		OutstandingAmount: originalAmount,
		PaidAmount:        0,
		Status:            CollectionStatusPending,
	}

	c.AddDomainEvent(NewCollectionCreatedEvent(c))

	return c, nil
}

// ApplyPayment applies a payment to the collection.
// Amounts exceeding the outstanding balance are rejected, not clamped.
func (c *Collection) ApplyPayment(amount int64) error {
	if !c.Status.CanApplyPayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to collection in %s status", c.Status))
	}
	if amount <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}
	if amount > c.OutstandingAmount {
		return shared.NewDomainError("OVERPAYMENT",
			fmt.Sprintf("Payment amount %d exceeds outstanding amount %d", amount, c.OutstandingAmount))
	}

	c.OutstandingAmount -= amount
	c.PaidAmount += amount

	if c.OutstandingAmount == 0 {
		now := time.Now()
		c.Status = CollectionStatusPaid
		c.PaidAt = &now
		c.AddDomainEvent(NewCollectionPaidEvent(c))
	} else {
		// The aging sweep re-promotes to OVERDUE when the due date has passed.
		c.Status = CollectionStatusPartial
		c.AddDomainEvent(NewCollectionPartiallyPaidEvent(c, amount))
	}

	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// ReversePayment backs a previously applied payment amount out of the ledger,
// e.g. when an approved payment is deleted or its amount corrected downward.
func (c *Collection) ReversePayment(amount int64) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reverse payment on collection in %s status", c.Status))
	}
	if amount <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Reversal amount must be positive")
	}
	if amount > c.PaidAmount {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Reversal amount %d exceeds paid amount %d", amount, c.PaidAmount))
	}

	c.OutstandingAmount += amount
	c.PaidAmount -= amount
	c.PaidAt = nil

	if c.PaidAmount == 0 {
		c.Status = CollectionStatusPending
	} else {
		c.Status = CollectionStatusPartial
	}

	c.AddDomainEvent(NewCollectionPaymentReversedEvent(c, amount))

	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// RecomputeAging refreshes AgingDays against the given time and promotes
// past-due open collections to OVERDUE. Disputed and written-off collections
// keep their status. Returns true if anything changed.
func (c *Collection) RecomputeAging(now time.Time) bool {
	aging := 0
	if now.After(c.DueDate) {
		aging = int(now.Sub(c.DueDate).Hours() / 24)
	}

	changed := false
	if aging != c.AgingDays {
		c.AgingDays = aging
		changed = true
	}

	if aging > 0 && (c.Status == CollectionStatusPending || c.Status == CollectionStatusPartial) {
		c.Status = CollectionStatusOverdue
		c.AddDomainEvent(NewCollectionOverdueEvent(c))
		changed = true
	}

	if changed {
		c.UpdatedAt = time.Now()
		c.IncrementVersion()
	}

	return changed
}

// RaiseDispute flags the collection as contested by the customer.
// Re-raising a dispute overwrites the reason; it is not an error.
func (c *Collection) RaiseDispute(reason string, raisedBy uuid.UUID) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot dispute collection in %s status", c.Status))
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Dispute reason is required")
	}
	if raisedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	now := time.Now()
	c.DisputeRaisedAt = &now
	c.DisputeReason = reason
	c.Status = CollectionStatusDisputed

	c.AddDomainEvent(NewCollectionDisputedEvent(c, raisedBy))

	c.UpdatedAt = now
	c.IncrementVersion()

	return nil
}

// ResolveDispute lifts the disputed flag and recomputes status from the
// ledger amounts. The dispute reason and timestamp are kept as history.
func (c *Collection) ResolveDispute(resolvedBy uuid.UUID) error {
	if c.Status != CollectionStatusDisputed {
		return shared.NewDomainError("INVALID_STATE", "Collection is not disputed")
	}
	if resolvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	switch {
	case c.OutstandingAmount == 0:
		c.Status = CollectionStatusPaid
	case c.PaidAmount > 0:
		c.Status = CollectionStatusPartial
	default:
		c.Status = CollectionStatusPending
	}

	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// WriteOff retires the collection. Terminal: no ledger activity afterwards.
func (c *Collection) WriteOff(reason string, writtenOffBy uuid.UUID) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Collection is already written off")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Write-off reason is required")
	}
	if writtenOffBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	now := time.Now()
	c.Status = CollectionStatusWrittenOff
	c.WrittenOffAt = &now
	c.WriteOffReason = reason

	c.AddDomainEvent(NewCollectionWrittenOffEvent(c, writtenOffBy))

	c.UpdatedAt = now
	c.IncrementVersion()

	return nil
}

// RecordPromise records a customer's promise to pay
func (c *Collection) RecordPromise(amount int64, date time.Time) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot record promise on a written-off collection")
	}
	if amount <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Promised amount must be positive")
	}
	if date.IsZero() {
		return shared.NewDomainError("VALIDATION_ERROR", "Promised date is required")
	}

	c.PromisedAmount = &amount
	c.PromisedDate = &date
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Assign sets the agent responsible for chasing this collection
func (c *Collection) Assign(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Assignee ID cannot be empty")
	}
	c.AssignedTo = &userID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Escalate bumps the escalation level, bounded at maxEscalationLevel.
// Returns the new level.
func (c *Collection) Escalate() int {
	if c.EscalationLevel < maxEscalationLevel {
		c.EscalationLevel++
		c.UpdatedAt = time.Now()
		c.IncrementVersion()
	}
	return c.EscalationLevel
}

// Helper methods

// IsDisputed returns true if the collection is currently disputed
func (c *Collection) IsDisputed() bool {
	return c.Status == CollectionStatusDisputed
}

// IsOverdue returns true if the collection is past due with an open balance
func (c *Collection) IsOverdue(now time.Time) bool {
	if c.Status.IsTerminal() || c.Status == CollectionStatusPaid {
		return false
	}
	return now.After(c.DueDate)
}

// PaidPercentage returns the percentage of the original amount paid (0-100)
func (c *Collection) PaidPercentage() decimal.Decimal {
	if c.OriginalAmount == 0 {
		return decimal.NewFromInt(100)
	}
	return decimal.NewFromInt(c.PaidAmount).
		Div(decimal.NewFromInt(c.OriginalAmount)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}
