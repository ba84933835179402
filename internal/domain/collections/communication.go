package collections

import (
	"strings"
	"time"

	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CommunicationChannel represents how the customer was contacted
type CommunicationChannel string

const (
	ChannelCall  CommunicationChannel = "CALL"
	ChannelEmail CommunicationChannel = "EMAIL"
	ChannelSMS   CommunicationChannel = "SMS"
	ChannelVisit CommunicationChannel = "VISIT"
	ChannelOther CommunicationChannel = "OTHER"
)

// IsValid checks if the channel is valid
func (c CommunicationChannel) IsValid() bool {
	switch c {
	case ChannelCall, ChannelEmail, ChannelSMS, ChannelVisit, ChannelOther:
		return true
	}
	return false
}

// CommunicationOutcome represents the result of a customer contact
type CommunicationOutcome string

const (
	OutcomePromiseToPay      CommunicationOutcome = "PROMISE_TO_PAY"
	OutcomeNoResponse        CommunicationOutcome = "NO_RESPONSE"
	OutcomeDisputed          CommunicationOutcome = "DISPUTED"
	OutcomeCallbackRequested CommunicationOutcome = "CALLBACK_REQUESTED"
	OutcomePaymentClaimed    CommunicationOutcome = "PAYMENT_CLAIMED"
	OutcomeOther             CommunicationOutcome = "OTHER"
)

// IsValid checks if the outcome is valid
func (o CommunicationOutcome) IsValid() bool {
	switch o {
	case OutcomePromiseToPay, OutcomeNoResponse, OutcomeDisputed,
		OutcomeCallbackRequested, OutcomePaymentClaimed, OutcomeOther:
		return true
	}
	return false
}

// CommunicationLog records one customer contact made while chasing a
// collection. Logs are append-only from the caller's perspective; after-the-
// fact corrections go through the dual-control change request workflow.
type CommunicationLog struct {
	shared.BaseEntity
	CollectionID   uuid.UUID
	Channel        CommunicationChannel
	Summary        string
	Outcome        CommunicationOutcome
	PromisedAmount *int64
	PromisedDate   *time.Time
	LoggedBy       uuid.UUID
	OccurredAt     time.Time
}

// NewCommunicationLog creates a new communication log entry
func NewCommunicationLog(
	collectionID uuid.UUID,
	channel CommunicationChannel,
	summary string,
	outcome CommunicationOutcome,
	loggedBy uuid.UUID,
	occurredAt time.Time,
) (*CommunicationLog, error) {
	if collectionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COLLECTION", "Collection ID cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Communication channel is not valid")
	}
	if strings.TrimSpace(summary) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Communication summary cannot be empty")
	}
	if !outcome.IsValid() {
		return nil, shared.NewDomainError("INVALID_OUTCOME", "Communication outcome is not valid")
	}
	if loggedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Logger ID cannot be empty")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return &CommunicationLog{
		BaseEntity:   shared.NewBaseEntity(),
		CollectionID: collectionID,
		Channel:      channel,
		Summary:      summary,
		Outcome:      outcome,
		LoggedBy:     loggedBy,
		OccurredAt:   occurredAt,
	}, nil
}

// WithPromise attaches a promise-to-pay captured during the contact
func (l *CommunicationLog) WithPromise(amount int64, date time.Time) error {
	if amount <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Promised amount must be positive")
	}
	if date.IsZero() {
		return shared.NewDomainError("VALIDATION_ERROR", "Promised date is required")
	}
	l.PromisedAmount = &amount
	l.PromisedDate = &date
	return nil
}

// HasPromise returns true if the contact captured a promise to pay
func (l *CommunicationLog) HasPromise() bool {
	return l.PromisedAmount != nil && l.PromisedDate != nil
}
