package collections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/arcollect/backend/internal/domain/identity"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// conflictRetries bounds how often a service retries after losing an
// optimistic-lock race on the collection row.
const conflictRetries = 3

// withConflictRetry reruns fn on optimistic-lock conflicts, up to
// conflictRetries attempts. Any other error is returned as-is.
func withConflictRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

// PaymentService implements the dual-control payment approval workflow.
// Payments recorded by privileged actors apply to the ledger immediately;
// everyone else's payments wait in PENDING_APPROVAL until a second actor
// resolves them.
type PaymentService struct {
	scope    TransactionScope
	notifier Notifier
	audit    AuditLogger
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope, notifier Notifier, audit AuditLogger, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		scope:    scope,
		notifier: notifier,
		audit:    audit,
		logger:   logger.Named("payment-service"),
	}
}

// RecordPaymentRequest carries the input for recording a payment
type RecordPaymentRequest struct {
	CollectionID    uuid.UUID
	Amount          int64 // minor currency units
	Mode            collections.PaymentMode
	PaymentDate     time.Time
	ReferenceNumber string
	Actor           identity.Actor
}

// RecordPayment records a payment against a collection. For privileged actors
// the payment is created approved and the ledger updated in the same
// transaction; there is no observable pending state. For everyone else the
// payment is stored pending approval and the ledger is left untouched.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*collections.Payment, error) {
	if !req.Actor.Role.CanRecordPayments() {
		return nil, shared.NewDomainError("FORBIDDEN", "Role may not record payments")
	}

	var payment *collections.Payment
	var collection *collections.Collection

	err := withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			collection, err = repos.Collections().FindByID(ctx, req.CollectionID)
			if err != nil {
				return fmt.Errorf("failed to load collection: %w", err)
			}
			if collection == nil {
				return shared.ErrNotFound
			}
			if !collection.Status.CanApplyPayment() {
				return shared.NewDomainError("INVALID_STATE",
					fmt.Sprintf("Cannot record payment against collection in %s status", collection.Status))
			}

			if req.Actor.Role.CanAutoApprovePayments() {
				payment, err = collections.NewApprovedPayment(
					req.CollectionID, req.Amount, req.Mode, req.PaymentDate, req.ReferenceNumber, req.Actor.ID)
				if err != nil {
					return err
				}
				if err := collection.ApplyPayment(req.Amount); err != nil {
					return err
				}
				if err := repos.Payments().Save(ctx, payment); err != nil {
					return fmt.Errorf("failed to save payment: %w", err)
				}
				return repos.Collections().SaveWithLock(ctx, collection)
			}

			payment, err = collections.NewPendingPayment(
				req.CollectionID, req.Amount, req.Mode, req.PaymentDate, req.ReferenceNumber, req.Actor.ID)
			if err != nil {
				return err
			}
			return repos.Payments().Save(ctx, payment)
		})
	})
	if err != nil {
		return nil, err
	}

	if payment.IsPending() {
		s.notifier.PaymentPendingApproval(ctx, collection, payment)
	}
	s.audit.Record(ctx, AuditEntry{
		Actor:      req.Actor.ID,
		Action:     "payment.recorded",
		EntityType: "Payment",
		EntityID:   payment.ID,
		Detail: map[string]any{
			"collection_id": req.CollectionID.String(),
			"amount":        req.Amount,
			"status":        payment.Status.String(),
		},
	})

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("collection_id", req.CollectionID.String()),
		zap.Int64("amount", req.Amount),
		zap.String("status", payment.Status.String()))

	return payment, nil
}

// ApprovePayment resolves a pending payment as approved and applies it to the
// collection ledger in the same transaction. Concurrent resolutions have
// exactly one winner; the loser gets shared.ErrAlreadyResolved.
func (s *PaymentService) ApprovePayment(ctx context.Context, paymentID uuid.UUID, approver identity.Actor) (*collections.Payment, error) {
	if !approver.Role.CanApprove() {
		return nil, shared.NewDomainError("FORBIDDEN", "Role may not approve payments")
	}

	var payment *collections.Payment
	var collection *collections.Collection

	err := withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			payment, err = repos.Payments().FindByID(ctx, paymentID)
			if err != nil {
				return fmt.Errorf("failed to load payment: %w", err)
			}
			if payment == nil {
				return shared.ErrNotFound
			}
			if !payment.IsPending() {
				return shared.ErrAlreadyResolved
			}

			collection, err = repos.Collections().FindByID(ctx, payment.CollectionID)
			if err != nil {
				return fmt.Errorf("failed to load collection: %w", err)
			}
			if collection == nil {
				return shared.ErrNotFound
			}

			if err := payment.Approve(approver.ID); err != nil {
				return err
			}
			if err := collection.ApplyPayment(payment.Amount); err != nil {
				return err
			}

			// The conditional update is the race arbiter: it only applies if
			// the stored row is still pending.
			if err := repos.Payments().SaveResolution(ctx, payment); err != nil {
				return err
			}
			return repos.Collections().SaveWithLock(ctx, collection)
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PaymentApproved(ctx, collection, payment)
	s.audit.Record(ctx, AuditEntry{
		Actor:      approver.ID,
		Action:     "payment.approved",
		EntityType: "Payment",
		EntityID:   payment.ID,
		Detail: map[string]any{
			"collection_id": payment.CollectionID.String(),
			"amount":        payment.Amount,
		},
	})

	s.logger.Info("payment approved",
		zap.String("payment_id", payment.ID.String()),
		zap.String("approver", approver.ID.String()))

	return payment, nil
}

// RejectPayment resolves a pending payment as rejected. The ledger is never
// touched. Concurrent resolutions have exactly one winner.
func (s *PaymentService) RejectPayment(ctx context.Context, paymentID uuid.UUID, approver identity.Actor, reason string) (*collections.Payment, error) {
	if !approver.Role.CanApprove() {
		return nil, shared.NewDomainError("FORBIDDEN", "Role may not reject payments")
	}

	var payment *collections.Payment
	var collection *collections.Collection

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.ErrNotFound
		}
		if !payment.IsPending() {
			return shared.ErrAlreadyResolved
		}

		collection, err = repos.Collections().FindByID(ctx, payment.CollectionID)
		if err != nil {
			return fmt.Errorf("failed to load collection: %w", err)
		}
		if collection == nil {
			return shared.ErrNotFound
		}

		if err := payment.Reject(approver.ID, reason); err != nil {
			return err
		}
		return repos.Payments().SaveResolution(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PaymentRejected(ctx, collection, payment)
	s.audit.Record(ctx, AuditEntry{
		Actor:      approver.ID,
		Action:     "payment.rejected",
		EntityType: "Payment",
		EntityID:   payment.ID,
		Detail: map[string]any{
			"collection_id": payment.CollectionID.String(),
			"reason":        reason,
		},
	})

	s.logger.Info("payment rejected",
		zap.String("payment_id", payment.ID.String()),
		zap.String("approver", approver.ID.String()),
		zap.String("reason", reason))

	return payment, nil
}

// GetPayment returns a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*collections.Payment, error) {
	var payment *collections.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByID(ctx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.ErrNotFound
	}
	return payment, nil
}

// ListPayments returns payments matching the filter
func (s *PaymentService) ListPayments(ctx context.Context, filter collections.PaymentFilter) ([]collections.Payment, error) {
	var payments []collections.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payments, err = repos.Payments().FindAll(ctx, filter)
		return err
	})
	return payments, err
}
