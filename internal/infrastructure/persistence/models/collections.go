package models

import (
	"time"

	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/google/uuid"
)

// CollectionModel is the persistence model for Collection
type CollectionModel struct {
	AggregateModel
	CustomerID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerName      string     `gorm:"size:255;not null"`
	InvoiceNumber     string     `gorm:"size:50;not null;uniqueIndex"`
	InvoiceDate       time.Time  `gorm:"not null"`
	DueDate           time.Time  `gorm:"not null;index"`
	OriginalAmount    int64      `gorm:"not null"`
	OutstandingAmount int64      `gorm:"not null"`
	PaidAmount        int64      `gorm:"not null;default:0"`
	Status            string     `gorm:"size:20;not null;index"`
	AgingDays         int        `gorm:"not null;default:0"`
	AssignedTo        *uuid.UUID `gorm:"type:uuid;index"`
	EscalationLevel   int        `gorm:"not null;default:0"`
	DisputeRaisedAt   *time.Time
	DisputeReason     string `gorm:"type:text"`
	PromisedAmount    *int64
	PromisedDate      *time.Time
	WrittenOffAt      *time.Time
	WriteOffReason    string `gorm:"type:text"`
	PaidAt            *time.Time
}

// TableName returns the table name
func (CollectionModel) TableName() string {
	return "collections"
}

// ToDomain converts the model to a domain Collection
func (m *CollectionModel) ToDomain() *collections.Collection {
	return &collections.Collection{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		InvoiceNumber:     m.InvoiceNumber,
		InvoiceDate:       m.InvoiceDate,
		DueDate:           m.DueDate,
		OriginalAmount:    m.OriginalAmount,
		OutstandingAmount: m.OutstandingAmount,
		PaidAmount:        m.PaidAmount,
		Status:            collections.CollectionStatus(m.Status),
		AgingDays:         m.AgingDays,
		AssignedTo:        m.AssignedTo,
		EscalationLevel:   m.EscalationLevel,
		DisputeRaisedAt:   m.DisputeRaisedAt,
		DisputeReason:     m.DisputeReason,
		PromisedAmount:    m.PromisedAmount,
		PromisedDate:      m.PromisedDate,
		WrittenOffAt:      m.WrittenOffAt,
		WriteOffReason:    m.WriteOffReason,
		PaidAt:            m.PaidAt,
	}
}

// FromDomain populates the model from a domain Collection
func (m *CollectionModel) FromDomain(c *collections.Collection) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CustomerID = c.CustomerID
	m.CustomerName = c.CustomerName
	m.InvoiceNumber = c.InvoiceNumber
	m.InvoiceDate = c.InvoiceDate
	m.DueDate = c.DueDate
	m.OriginalAmount = c.OriginalAmount
	m.OutstandingAmount = c.OutstandingAmount
	m.PaidAmount = c.PaidAmount
	m.Status = string(c.Status)
	m.AgingDays = c.AgingDays
	m.AssignedTo = c.AssignedTo
	m.EscalationLevel = c.EscalationLevel
	m.DisputeRaisedAt = c.DisputeRaisedAt
	m.DisputeReason = c.DisputeReason
	m.PromisedAmount = c.PromisedAmount
	m.PromisedDate = c.PromisedDate
	m.WrittenOffAt = c.WrittenOffAt
	m.WriteOffReason = c.WriteOffReason
	m.PaidAt = c.PaidAt
}

// PaymentModel is the persistence model for Payment
type PaymentModel struct {
	AggregateModel
	CollectionID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount          int64     `gorm:"not null"`
	Mode            string    `gorm:"size:20;not null"`
	PaymentDate     time.Time `gorm:"not null"`
	ReferenceNumber string    `gorm:"size:100"`
	Status          string    `gorm:"size:20;not null;index"`
	RecordedBy      uuid.UUID `gorm:"type:uuid;not null;index"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason string `gorm:"type:text"`
}

// TableName returns the table name
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *collections.Payment {
	return &collections.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CollectionID:      m.CollectionID,
		Amount:            m.Amount,
		Mode:              collections.PaymentMode(m.Mode),
		PaymentDate:       m.PaymentDate,
		ReferenceNumber:   m.ReferenceNumber,
		Status:            collections.PaymentStatus(m.Status),
		RecordedBy:        m.RecordedBy,
		ApprovedBy:        m.ApprovedBy,
		ApprovedAt:        m.ApprovedAt,
		RejectionReason:   m.RejectionReason,
	}
}

// FromDomain populates the model from a domain Payment
func (m *PaymentModel) FromDomain(p *collections.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CollectionID = p.CollectionID
	m.Amount = p.Amount
	m.Mode = string(p.Mode)
	m.PaymentDate = p.PaymentDate
	m.ReferenceNumber = p.ReferenceNumber
	m.Status = string(p.Status)
	m.RecordedBy = p.RecordedBy
	m.ApprovedBy = p.ApprovedBy
	m.ApprovedAt = p.ApprovedAt
	m.RejectionReason = p.RejectionReason
}

// CommunicationLogModel is the persistence model for CommunicationLog
type CommunicationLogModel struct {
	BaseModel
	CollectionID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Channel        string    `gorm:"size:20;not null"`
	Summary        string    `gorm:"type:text;not null"`
	Outcome        string    `gorm:"size:30;not null"`
	PromisedAmount *int64
	PromisedDate   *time.Time
	LoggedBy       uuid.UUID `gorm:"type:uuid;not null"`
	OccurredAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name
func (CommunicationLogModel) TableName() string {
	return "communication_logs"
}

// ToDomain converts the model to a domain CommunicationLog
func (m *CommunicationLogModel) ToDomain() *collections.CommunicationLog {
	return &collections.CommunicationLog{
		BaseEntity:     m.BaseModel.ToDomain(),
		CollectionID:   m.CollectionID,
		Channel:        collections.CommunicationChannel(m.Channel),
		Summary:        m.Summary,
		Outcome:        collections.CommunicationOutcome(m.Outcome),
		PromisedAmount: m.PromisedAmount,
		PromisedDate:   m.PromisedDate,
		LoggedBy:       m.LoggedBy,
		OccurredAt:     m.OccurredAt,
	}
}

// FromDomain populates the model from a domain CommunicationLog
func (m *CommunicationLogModel) FromDomain(l *collections.CommunicationLog) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.CollectionID = l.CollectionID
	m.Channel = string(l.Channel)
	m.Summary = l.Summary
	m.Outcome = string(l.Outcome)
	m.PromisedAmount = l.PromisedAmount
	m.PromisedDate = l.PromisedDate
	m.LoggedBy = l.LoggedBy
	m.OccurredAt = l.OccurredAt
}
