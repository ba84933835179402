package collections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arcollect/backend/internal/domain/approval"
	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/arcollect/backend/internal/domain/identity"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Field keys used in change request snapshots. Times are stored as RFC 3339
// strings so the snapshots survive the JSON round trip unchanged.
const (
	fieldAmount          = "amount"
	fieldMode            = "mode"
	fieldPaymentDate     = "payment_date"
	fieldReferenceNumber = "reference_number"
	fieldSummary         = "summary"
	fieldOutcome         = "outcome"
	fieldPromisedAmount  = "promised_amount"
	fieldPromisedDate    = "promised_date"
)

// ChangeRequestService implements the dual-control edit workflow: after-the-
// fact corrections and deletions of payments and communication logs go through
// pending change requests that a second actor approves or rejects, with
// auto-approval once the configured window expires.
type ChangeRequestService struct {
	scope    TransactionScope
	notifier Notifier
	audit    AuditLogger
	window   time.Duration
	logger   *zap.Logger
}

// NewChangeRequestService creates a new ChangeRequestService. window is the
// auto-approval deadline added to each new request.
func NewChangeRequestService(
	scope TransactionScope,
	notifier Notifier,
	audit AuditLogger,
	window time.Duration,
	logger *zap.Logger,
) *ChangeRequestService {
	return &ChangeRequestService{
		scope:    scope,
		notifier: notifier,
		audit:    audit,
		window:   window,
		logger:   logger.Named("change-request-service"),
	}
}

// PaymentEdit carries the proposed changes to a payment. Nil fields are
// left unchanged.
type PaymentEdit struct {
	Amount          *int64
	Mode            *collections.PaymentMode
	PaymentDate     *time.Time
	ReferenceNumber *string
}

// CommunicationEdit carries the proposed changes to a communication log.
// Nil fields are left unchanged.
type CommunicationEdit struct {
	Summary        *string
	Outcome        *collections.CommunicationOutcome
	PromisedAmount *int64
	PromisedDate   *time.Time
}

// RequestPaymentEdit files a pending edit request against a payment
func (s *ChangeRequestService) RequestPaymentEdit(
	ctx context.Context,
	paymentID uuid.UUID,
	edit PaymentEdit,
	reason string,
	actor identity.Actor,
) (*approval.ChangeRequest, error) {
	if !actor.Role.CanRecordPayments() {
		return nil, shared.NewDomainError("FORBIDDEN", "Role may not request payment edits")
	}
	if edit.Amount != nil && *edit.Amount <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Proposed amount must be positive")
	}
	if edit.Mode != nil && !edit.Mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", "Proposed payment mode is not valid")
	}

	var request *approval.ChangeRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.ErrNotFound
		}
		if payment.Status == collections.PaymentStatusRejected {
			return shared.NewDomainError("INVALID_STATE", "Cannot edit a rejected payment")
		}
		if err := s.ensureNoPendingRequest(ctx, repos, paymentID); err != nil {
			return err
		}

		original := approval.FieldSet{}
		proposed := approval.FieldSet{}
		if edit.Amount != nil {
			original[fieldAmount] = payment.Amount
			proposed[fieldAmount] = *edit.Amount
		}
		if edit.Mode != nil {
			original[fieldMode] = string(payment.Mode)
			proposed[fieldMode] = string(*edit.Mode)
		}
		if edit.PaymentDate != nil {
			original[fieldPaymentDate] = payment.PaymentDate.Format(time.RFC3339)
			proposed[fieldPaymentDate] = edit.PaymentDate.Format(time.RFC3339)
		}
		if edit.ReferenceNumber != nil {
			original[fieldReferenceNumber] = payment.ReferenceNumber
			proposed[fieldReferenceNumber] = *edit.ReferenceNumber
		}

		request, err = approval.NewEditRequest(
			approval.KindPaymentEdit, paymentID, original, proposed, reason, actor.ID, s.window)
		if err != nil {
			return err
		}
		return repos.ChangeRequests().Save(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.afterRequestFiled(ctx, request, actor)
	return request, nil
}

// RequestCommunicationEdit files a pending edit request against a
// communication log
func (s *ChangeRequestService) RequestCommunicationEdit(
	ctx context.Context,
	logID uuid.UUID,
	edit CommunicationEdit,
	reason string,
	actor identity.Actor,
) (*approval.ChangeRequest, error) {
	if edit.Summary != nil && *edit.Summary == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Proposed summary cannot be empty")
	}
	if edit.Outcome != nil && !edit.Outcome.IsValid() {
		return nil, shared.NewDomainError("INVALID_OUTCOME", "Proposed outcome is not valid")
	}
	if edit.PromisedAmount != nil && *edit.PromisedAmount <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Proposed promised amount must be positive")
	}

	var request *approval.ChangeRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		log, err := repos.Communications().FindByID(ctx, logID)
		if err != nil {
			return fmt.Errorf("failed to load communication log: %w", err)
		}
		if log == nil {
			return shared.ErrNotFound
		}
		if err := s.ensureNoPendingRequest(ctx, repos, logID); err != nil {
			return err
		}

		original := approval.FieldSet{}
		proposed := approval.FieldSet{}
		if edit.Summary != nil {
			original[fieldSummary] = log.Summary
			proposed[fieldSummary] = *edit.Summary
		}
		if edit.Outcome != nil {
			original[fieldOutcome] = string(log.Outcome)
			proposed[fieldOutcome] = string(*edit.Outcome)
		}
		if edit.PromisedAmount != nil {
			if log.PromisedAmount != nil {
				original[fieldPromisedAmount] = *log.PromisedAmount
			} else {
				original[fieldPromisedAmount] = nil
			}
			proposed[fieldPromisedAmount] = *edit.PromisedAmount
		}
		if edit.PromisedDate != nil {
			if log.PromisedDate != nil {
				original[fieldPromisedDate] = log.PromisedDate.Format(time.RFC3339)
			} else {
				original[fieldPromisedDate] = nil
			}
			proposed[fieldPromisedDate] = edit.PromisedDate.Format(time.RFC3339)
		}

		request, err = approval.NewEditRequest(
			approval.KindCommunicationEdit, logID, original, proposed, reason, actor.ID, s.window)
		if err != nil {
			return err
		}
		return repos.ChangeRequests().Save(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.afterRequestFiled(ctx, request, actor)
	return request, nil
}

// RequestPaymentDeletion files a pending deletion request against a payment.
// Privileged actors delete directly via DeletePayment instead.
func (s *ChangeRequestService) RequestPaymentDeletion(
	ctx context.Context,
	paymentID uuid.UUID,
	reason string,
	actor identity.Actor,
) (*approval.ChangeRequest, error) {
	var request *approval.ChangeRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.ErrNotFound
		}
		if err := s.ensureNoPendingRequest(ctx, repos, paymentID); err != nil {
			return err
		}

		original := approval.FieldSet{
			fieldAmount:          payment.Amount,
			fieldMode:            string(payment.Mode),
			fieldPaymentDate:     payment.PaymentDate.Format(time.RFC3339),
			fieldReferenceNumber: payment.ReferenceNumber,
		}
		request, err = approval.NewDeleteRequest(
			approval.KindPaymentDelete, paymentID, original, reason, actor.ID, s.window)
		if err != nil {
			return err
		}
		return repos.ChangeRequests().Save(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.afterRequestFiled(ctx, request, actor)
	return request, nil
}

// RequestCommunicationDeletion files a pending deletion request against a
// communication log
func (s *ChangeRequestService) RequestCommunicationDeletion(
	ctx context.Context,
	logID uuid.UUID,
	reason string,
	actor identity.Actor,
) (*approval.ChangeRequest, error) {
	var request *approval.ChangeRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		log, err := repos.Communications().FindByID(ctx, logID)
		if err != nil {
			return fmt.Errorf("failed to load communication log: %w", err)
		}
		if log == nil {
			return shared.ErrNotFound
		}
		if err := s.ensureNoPendingRequest(ctx, repos, logID); err != nil {
			return err
		}

		original := approval.FieldSet{
			fieldSummary: log.Summary,
			fieldOutcome: string(log.Outcome),
		}
		request, err = approval.NewDeleteRequest(
			approval.KindCommunicationDelete, logID, original, reason, actor.ID, s.window)
		if err != nil {
			return err
		}
		return repos.ChangeRequests().Save(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.afterRequestFiled(ctx, request, actor)
	return request, nil
}

// DeletePayment deletes a payment directly, bypassing the request workflow.
// Privileged actors only. Deleting an approved payment reverses its ledger
// effect in the same transaction.
func (s *ChangeRequestService) DeletePayment(ctx context.Context, paymentID uuid.UUID, actor identity.Actor) error {
	if !actor.Role.CanDeleteDirectly() {
		return shared.NewDomainError("FORBIDDEN", "Role must file a deletion request instead")
	}

	err := withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			payment, err := repos.Payments().FindByID(ctx, paymentID)
			if err != nil {
				return fmt.Errorf("failed to load payment: %w", err)
			}
			if payment == nil {
				return shared.ErrNotFound
			}
			if payment.IsApproved() {
				if err := s.reverseLedger(ctx, repos, payment.CollectionID, payment.Amount); err != nil {
					return err
				}
			}
			return repos.Payments().Delete(ctx, paymentID)
		})
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor.ID,
		Action:     "payment.deleted",
		EntityType: "Payment",
		EntityID:   paymentID,
	})
	return nil
}

// DeleteCommunication deletes a communication log directly, bypassing the
// request workflow. Privileged actors only.
func (s *ChangeRequestService) DeleteCommunication(ctx context.Context, logID uuid.UUID, actor identity.Actor) error {
	if !actor.Role.CanDeleteDirectly() {
		return shared.NewDomainError("FORBIDDEN", "Role must file a deletion request instead")
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		log, err := repos.Communications().FindByID(ctx, logID)
		if err != nil {
			return fmt.Errorf("failed to load communication log: %w", err)
		}
		if log == nil {
			return shared.ErrNotFound
		}
		return repos.Communications().Delete(ctx, logID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor.ID,
		Action:     "communication.deleted",
		EntityType: "CommunicationLog",
		EntityID:   logID,
	})
	return nil
}

// Approve resolves a pending change request and applies the proposed change
// to the target record, atomically. Concurrent resolutions have exactly one
// winner; the loser gets shared.ErrAlreadyResolved.
func (s *ChangeRequestService) Approve(ctx context.Context, requestID uuid.UUID, approver identity.Actor) (*approval.ChangeRequest, error) {
	if !approver.Role.CanApprove() {
		return nil, shared.NewDomainError("FORBIDDEN", "Role may not approve change requests")
	}

	var request *approval.ChangeRequest
	err := withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			request, err = repos.ChangeRequests().FindByID(ctx, requestID)
			if err != nil {
				return fmt.Errorf("failed to load change request: %w", err)
			}
			if request == nil {
				return shared.ErrNotFound
			}
			if request.Status != approval.RequestStatusPending {
				return shared.ErrAlreadyResolved
			}
			if request.RequestedBy == approver.ID {
				return shared.NewDomainError("FORBIDDEN", "Cannot approve own change request")
			}

			if err := request.Approve(approver.ID); err != nil {
				return err
			}
			// The conditional update arbitrates the race before the target is
			// touched; the loser rolls back having changed nothing.
			if err := repos.ChangeRequests().SaveResolution(ctx, request); err != nil {
				return err
			}
			return s.applyChange(ctx, repos, request)
		})
	})
	if err != nil {
		return nil, err
	}

	s.afterRequestResolved(ctx, request, approver.ID)
	return request, nil
}

// Reject resolves a pending change request as rejected. The target record is
// untouched.
func (s *ChangeRequestService) Reject(ctx context.Context, requestID uuid.UUID, approver identity.Actor, reason string) (*approval.ChangeRequest, error) {
	if !approver.Role.CanApprove() {
		return nil, shared.NewDomainError("FORBIDDEN", "Role may not reject change requests")
	}

	var request *approval.ChangeRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		request, err = repos.ChangeRequests().FindByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to load change request: %w", err)
		}
		if request == nil {
			return shared.ErrNotFound
		}
		if request.Status != approval.RequestStatusPending {
			return shared.ErrAlreadyResolved
		}
		if request.RequestedBy == approver.ID {
			return shared.NewDomainError("FORBIDDEN", "Cannot reject own change request")
		}

		if err := request.Reject(approver.ID, reason); err != nil {
			return err
		}
		return repos.ChangeRequests().SaveResolution(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.afterRequestResolved(ctx, request, approver.ID)
	return request, nil
}

// ProcessAutoApprovals resolves every pending request whose deadline has
// passed, applying each change in its own transaction. Per-item failures are
// logged and skipped; requests resolved by a human between the query and the
// update are detected by the conditional update and skipped. Returns the
// number of requests auto-approved.
func (s *ChangeRequestService) ProcessAutoApprovals(ctx context.Context, now time.Time) (int, error) {
	var due []approval.ChangeRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		due, err = repos.ChangeRequests().FindDue(ctx, now)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load due change requests: %w", err)
	}

	processed := 0
	for i := range due {
		requestID := due[i].ID
		var request *approval.ChangeRequest

		err := withConflictRetry(func() error {
			return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
				var err error
				request, err = repos.ChangeRequests().FindByID(ctx, requestID)
				if err != nil {
					return err
				}
				if request == nil || !request.IsDue(now) {
					return shared.ErrAlreadyResolved
				}
				if err := request.AutoApprove(now); err != nil {
					return err
				}
				if err := repos.ChangeRequests().SaveResolution(ctx, request); err != nil {
					return err
				}
				return s.applyChange(ctx, repos, request)
			})
		})
		if err != nil {
			if errors.Is(err, shared.ErrAlreadyResolved) {
				continue
			}
			s.logger.Warn("auto-approval failed for change request",
				zap.String("request_id", requestID.String()),
				zap.Error(err))
			continue
		}

		processed++
		s.afterRequestResolved(ctx, request, uuid.Nil)
	}

	if processed > 0 {
		s.logger.Info("auto-approval sweep completed",
			zap.Int("due", len(due)),
			zap.Int("processed", processed))
	}

	return processed, nil
}

// GetRequest returns a change request by ID
func (s *ChangeRequestService) GetRequest(ctx context.Context, requestID uuid.UUID) (*approval.ChangeRequest, error) {
	var request *approval.ChangeRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		request, err = repos.ChangeRequests().FindByID(ctx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, shared.ErrNotFound
	}
	return request, nil
}

// ListRequests returns change requests matching the filter
func (s *ChangeRequestService) ListRequests(ctx context.Context, filter approval.ChangeRequestFilter) ([]approval.ChangeRequest, error) {
	var requests []approval.ChangeRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		requests, err = repos.ChangeRequests().FindAll(ctx, filter)
		return err
	})
	return requests, err
}

// ensureNoPendingRequest rejects a new request while another pending request
// targets the same record. Two in-flight proposals for one record would make
// the original snapshots ambiguous.
func (s *ChangeRequestService) ensureNoPendingRequest(ctx context.Context, repos TransactionalRepositories, targetID uuid.UUID) error {
	pending, err := repos.ChangeRequests().FindPendingByTarget(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to check pending requests: %w", err)
	}
	if len(pending) > 0 {
		return shared.NewDomainError("DUPLICATE_REQUEST", "A pending change request already targets this record")
	}
	return nil
}

// applyChange mutates the target record according to the resolved request.
// Runs inside the same transaction as the request's terminal transition.
func (s *ChangeRequestService) applyChange(ctx context.Context, repos TransactionalRepositories, request *approval.ChangeRequest) error {
	switch request.Kind {
	case approval.KindPaymentEdit:
		return s.applyPaymentEdit(ctx, repos, request)
	case approval.KindCommunicationEdit:
		return s.applyCommunicationEdit(ctx, repos, request)
	case approval.KindPaymentDelete:
		return s.applyPaymentDeletion(ctx, repos, request)
	case approval.KindCommunicationDelete:
		if err := repos.Communications().Delete(ctx, request.TargetID); err != nil {
			return fmt.Errorf("failed to delete communication log: %w", err)
		}
		return nil
	default:
		return shared.NewDomainError("INVALID_KIND", "Unknown change request kind")
	}
}

func (s *ChangeRequestService) applyPaymentEdit(ctx context.Context, repos TransactionalRepositories, request *approval.ChangeRequest) error {
	payment, err := repos.Payments().FindByID(ctx, request.TargetID)
	if err != nil {
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return shared.ErrNotFound
	}

	if amount, ok := request.Proposed.Int64(fieldAmount); ok && amount != payment.Amount {
		if amount <= 0 {
			return shared.NewDomainError("VALIDATION_ERROR", "Proposed amount must be positive")
		}
		// An approved payment already sits in the ledger: reconcile the
		// delta so original == outstanding + paid keeps holding.
		if payment.IsApproved() {
			delta := amount - payment.Amount
			if err := s.adjustLedger(ctx, repos, payment.CollectionID, delta); err != nil {
				return err
			}
		}
		payment.Amount = amount
	}
	if mode, ok := request.Proposed.String(fieldMode); ok {
		proposedMode := collections.PaymentMode(mode)
		if !proposedMode.IsValid() {
			return shared.NewDomainError("INVALID_PAYMENT_MODE", "Proposed payment mode is not valid")
		}
		payment.Mode = proposedMode
	}
	if date, ok := request.Proposed.Time(fieldPaymentDate); ok {
		payment.PaymentDate = date
	}
	if request.Proposed.Has(fieldReferenceNumber) {
		if ref, ok := request.Proposed.String(fieldReferenceNumber); ok {
			payment.ReferenceNumber = ref
		}
	}

	payment.UpdatedAt = time.Now()
	payment.IncrementVersion()
	if err := repos.Payments().Save(ctx, payment); err != nil {
		return fmt.Errorf("failed to save edited payment: %w", err)
	}
	return nil
}

func (s *ChangeRequestService) applyCommunicationEdit(ctx context.Context, repos TransactionalRepositories, request *approval.ChangeRequest) error {
	log, err := repos.Communications().FindByID(ctx, request.TargetID)
	if err != nil {
		return fmt.Errorf("failed to load communication log: %w", err)
	}
	if log == nil {
		return shared.ErrNotFound
	}

	if summary, ok := request.Proposed.String(fieldSummary); ok {
		log.Summary = summary
	}
	if outcome, ok := request.Proposed.String(fieldOutcome); ok {
		proposedOutcome := collections.CommunicationOutcome(outcome)
		if !proposedOutcome.IsValid() {
			return shared.NewDomainError("INVALID_OUTCOME", "Proposed outcome is not valid")
		}
		log.Outcome = proposedOutcome
	}
	if amount, ok := request.Proposed.Int64(fieldPromisedAmount); ok {
		log.PromisedAmount = &amount
	}
	if date, ok := request.Proposed.Time(fieldPromisedDate); ok {
		log.PromisedDate = &date
	}

	log.UpdatedAt = time.Now()
	if err := repos.Communications().Save(ctx, log); err != nil {
		return fmt.Errorf("failed to save edited communication log: %w", err)
	}
	return nil
}

func (s *ChangeRequestService) applyPaymentDeletion(ctx context.Context, repos TransactionalRepositories, request *approval.ChangeRequest) error {
	payment, err := repos.Payments().FindByID(ctx, request.TargetID)
	if err != nil {
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return shared.ErrNotFound
	}
	if payment.IsApproved() {
		if err := s.reverseLedger(ctx, repos, payment.CollectionID, payment.Amount); err != nil {
			return err
		}
	}
	if err := repos.Payments().Delete(ctx, request.TargetID); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

// adjustLedger applies a signed payment delta to a collection
func (s *ChangeRequestService) adjustLedger(ctx context.Context, repos TransactionalRepositories, collectionID uuid.UUID, delta int64) error {
	if delta == 0 {
		return nil
	}
	collection, err := repos.Collections().FindByID(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if collection == nil {
		return shared.ErrNotFound
	}
	if delta > 0 {
		if err := collection.ApplyPayment(delta); err != nil {
			return err
		}
	} else {
		if err := collection.ReversePayment(-delta); err != nil {
			return err
		}
	}
	return repos.Collections().SaveWithLock(ctx, collection)
}

// reverseLedger backs an approved payment's amount out of its collection
func (s *ChangeRequestService) reverseLedger(ctx context.Context, repos TransactionalRepositories, collectionID uuid.UUID, amount int64) error {
	collection, err := repos.Collections().FindByID(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if collection == nil {
		return shared.ErrNotFound
	}
	if err := collection.ReversePayment(amount); err != nil {
		return err
	}
	return repos.Collections().SaveWithLock(ctx, collection)
}

func (s *ChangeRequestService) afterRequestFiled(ctx context.Context, request *approval.ChangeRequest, actor identity.Actor) {
	s.notifier.ChangeRequestPending(ctx, request)
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor.ID,
		Action:     "change_request.filed",
		EntityType: "ChangeRequest",
		EntityID:   request.ID,
		Detail: map[string]any{
			"kind":      request.Kind.String(),
			"target_id": request.TargetID.String(),
		},
	})
	s.logger.Info("change request filed",
		zap.String("request_id", request.ID.String()),
		zap.String("kind", request.Kind.String()),
		zap.String("target_id", request.TargetID.String()))
}

func (s *ChangeRequestService) afterRequestResolved(ctx context.Context, request *approval.ChangeRequest, resolvedBy uuid.UUID) {
	s.notifier.ChangeRequestResolved(ctx, request)
	s.audit.Record(ctx, AuditEntry{
		Actor:      resolvedBy,
		Action:     "change_request." + string(request.Status),
		EntityType: "ChangeRequest",
		EntityID:   request.ID,
		Detail: map[string]any{
			"kind":      request.Kind.String(),
			"target_id": request.TargetID.String(),
		},
	})
	s.logger.Info("change request resolved",
		zap.String("request_id", request.ID.String()),
		zap.String("status", request.Status.String()))
}
