package models

import (
	"time"

	"github.com/arcollect/backend/internal/domain/approval"
	"github.com/google/uuid"
)

// ChangeRequestModel is the persistence model for ChangeRequest.
// Field snapshots are stored as JSON via FieldSet's Valuer/Scanner.
type ChangeRequestModel struct {
	AggregateModel
	Kind            string            `gorm:"size:30;not null;index"`
	TargetID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Original        approval.FieldSet `gorm:"type:jsonb"`
	Proposed        approval.FieldSet `gorm:"type:jsonb"`
	Reason          string            `gorm:"type:text;not null"`
	RequestedBy     uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status          string            `gorm:"size:20;not null;index"`
	AutoApproveAt   time.Time         `gorm:"not null;index"`
	ResolvedBy      *uuid.UUID        `gorm:"type:uuid"`
	ResolvedAt      *time.Time
	RejectionReason string `gorm:"type:text"`
}

// TableName returns the table name
func (ChangeRequestModel) TableName() string {
	return "change_requests"
}

// ToDomain converts the model to a domain ChangeRequest
func (m *ChangeRequestModel) ToDomain() *approval.ChangeRequest {
	return &approval.ChangeRequest{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Kind:              approval.RequestKind(m.Kind),
		TargetID:          m.TargetID,
		Original:          m.Original,
		Proposed:          m.Proposed,
		Reason:            m.Reason,
		RequestedBy:       m.RequestedBy,
		Status:            approval.RequestStatus(m.Status),
		AutoApproveAt:     m.AutoApproveAt,
		ResolvedBy:        m.ResolvedBy,
		ResolvedAt:        m.ResolvedAt,
		RejectionReason:   m.RejectionReason,
	}
}

// FromDomain populates the model from a domain ChangeRequest
func (m *ChangeRequestModel) FromDomain(cr *approval.ChangeRequest) {
	m.FromDomainAggregateRoot(cr.BaseAggregateRoot)
	m.Kind = string(cr.Kind)
	m.TargetID = cr.TargetID
	m.Original = cr.Original
	m.Proposed = cr.Proposed
	m.Reason = cr.Reason
	m.RequestedBy = cr.RequestedBy
	m.Status = string(cr.Status)
	m.AutoApproveAt = cr.AutoApproveAt
	m.ResolvedBy = cr.ResolvedBy
	m.ResolvedAt = cr.ResolvedAt
	m.RejectionReason = cr.RejectionReason
}
