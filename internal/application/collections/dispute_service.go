package collections

import (
	"context"

	"github.com/arcollect/backend/internal/domain/identity"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DisputeService handles customer disputes against collections. It holds no
// state of its own; the dispute lifecycle lives on the Collection aggregate.
type DisputeService struct {
	scope  TransactionScope
	audit  AuditLogger
	logger *zap.Logger
}

// NewDisputeService creates a new DisputeService
func NewDisputeService(scope TransactionScope, audit AuditLogger, logger *zap.Logger) *DisputeService {
	return &DisputeService{
		scope:  scope,
		audit:  audit,
		logger: logger.Named("dispute-service"),
	}
}

// RaiseDispute flags a collection as contested by the customer. While
// disputed, the collection accepts no payments.
func (s *DisputeService) RaiseDispute(ctx context.Context, collectionID uuid.UUID, reason string, actor identity.Actor) error {
	err := withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			collection, err := repos.Collections().FindByID(ctx, collectionID)
			if err != nil {
				return err
			}
			if collection == nil {
				return shared.ErrNotFound
			}
			if err := collection.RaiseDispute(reason, actor.ID); err != nil {
				return err
			}
			return repos.Collections().SaveWithLock(ctx, collection)
		})
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor.ID,
		Action:     "dispute.raised",
		EntityType: "Collection",
		EntityID:   collectionID,
		Detail:     map[string]any{"reason": reason},
	})

	s.logger.Info("dispute raised",
		zap.String("collection_id", collectionID.String()),
		zap.String("reason", reason))
	return nil
}

// ResolveDispute lifts the dispute and restores the status implied by the
// ledger amounts. Approvers only.
func (s *DisputeService) ResolveDispute(ctx context.Context, collectionID uuid.UUID, actor identity.Actor) error {
	if !actor.Role.CanApprove() {
		return shared.NewDomainError("FORBIDDEN", "Role may not resolve disputes")
	}

	err := withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			collection, err := repos.Collections().FindByID(ctx, collectionID)
			if err != nil {
				return err
			}
			if collection == nil {
				return shared.ErrNotFound
			}
			if err := collection.ResolveDispute(actor.ID); err != nil {
				return err
			}
			return repos.Collections().SaveWithLock(ctx, collection)
		})
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor.ID,
		Action:     "dispute.resolved",
		EntityType: "Collection",
		EntityID:   collectionID,
	})

	s.logger.Info("dispute resolved", zap.String("collection_id", collectionID.String()))
	return nil
}
