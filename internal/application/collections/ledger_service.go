package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/arcollect/backend/internal/domain/identity"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService orchestrates the collection lifecycle: creation, assignment,
// the aging sweep, communications, promises, escalation and write-off.
type LedgerService struct {
	scope          TransactionScope
	notifier       Notifier
	audit          AuditLogger
	throttle       ReminderThrottle
	reminderWindow time.Duration
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService. reminderWindow is the
// suppression window for overdue reminders per collection.
func NewLedgerService(
	scope TransactionScope,
	notifier Notifier,
	audit AuditLogger,
	throttle ReminderThrottle,
	reminderWindow time.Duration,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		scope:          scope,
		notifier:       notifier,
		audit:          audit,
		throttle:       throttle,
		reminderWindow: reminderWindow,
		logger:         logger.Named("ledger-service"),
	}
}

// CreateCollectionRequest carries the input for creating a collection
type CreateCollectionRequest struct {
	CustomerID     uuid.UUID
	CustomerName   string
	InvoiceNumber  string
	InvoiceDate    time.Time
	DueDate        time.Time
	OriginalAmount int64 // minor currency units
	AssignedTo     *uuid.UUID
	Actor          identity.Actor
}

// CreateCollection opens a new collection record for an invoice
func (s *LedgerService) CreateCollection(ctx context.Context, req CreateCollectionRequest) (*collections.Collection, error) {
	var collection *collections.Collection

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.Collections().FindByInvoiceNumber(ctx, req.InvoiceNumber)
		if err != nil {
			return fmt.Errorf("failed to check invoice number: %w", err)
		}
		if existing != nil {
			return shared.NewDomainError("DUPLICATE_INVOICE",
				fmt.Sprintf("Collection for invoice %s already exists", req.InvoiceNumber))
		}

		collection, err = collections.NewCollection(
			req.CustomerID, req.CustomerName, req.InvoiceNumber,
			req.InvoiceDate, req.DueDate, req.OriginalAmount)
		if err != nil {
			return err
		}
		if req.AssignedTo != nil {
			if err := collection.Assign(*req.AssignedTo); err != nil {
				return err
			}
		}
		return repos.Collections().Save(ctx, collection)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      req.Actor.ID,
		Action:     "collection.created",
		EntityType: "Collection",
		EntityID:   collection.ID,
		Detail: map[string]any{
			"invoice_number": req.InvoiceNumber,
			"amount":         req.OriginalAmount,
		},
	})

	s.logger.Info("collection created",
		zap.String("collection_id", collection.ID.String()),
		zap.String("invoice_number", req.InvoiceNumber),
		zap.Int64("amount", req.OriginalAmount))

	return collection, nil
}

// GetCollection returns a collection by ID
func (s *LedgerService) GetCollection(ctx context.Context, id uuid.UUID) (*collections.Collection, error) {
	var collection *collections.Collection
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		collection, err = repos.Collections().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, shared.ErrNotFound
	}
	return collection, nil
}

// ListCollections returns a page of collections matching the filter
func (s *LedgerService) ListCollections(ctx context.Context, filter collections.CollectionFilter) (*shared.Paginated[collections.Collection], error) {
	var page *shared.Paginated[collections.Collection]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		items, err := repos.Collections().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err := repos.Collections().Count(ctx, filter)
		if err != nil {
			return err
		}
		result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
		page = &result
		return nil
	})
	return page, err
}

// TotalOutstanding returns the open balance across all collections
func (s *LedgerService) TotalOutstanding(ctx context.Context) (int64, error) {
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		total, err = repos.Collections().SumOutstanding(ctx)
		return err
	})
	return total, err
}

// AssignCollection sets the agent responsible for chasing the collection
func (s *LedgerService) AssignCollection(ctx context.Context, id uuid.UUID, assignee uuid.UUID, actor identity.Actor) error {
	err := withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			collection, err := repos.Collections().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if collection == nil {
				return shared.ErrNotFound
			}
			if err := collection.Assign(assignee); err != nil {
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
		Action:     "collection.assigned",
		EntityType: "Collection",
		EntityID:   id,
		Detail:     map[string]any{"assignee": assignee.String()},
	})
	return nil
}

// EscalateCollection bumps the escalation level and returns the new level
func (s *LedgerService) EscalateCollection(ctx context.Context, id uuid.UUID, actor identity.Actor) (int, error) {
	var level int
	err := withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			collection, err := repos.Collections().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if collection == nil {
				return shared.ErrNotFound
			}
			level = collection.Escalate()
			return repos.Collections().SaveWithLock(ctx, collection)
		})
	})
	if err != nil {
		return 0, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor.ID,
		Action:     "collection.escalated",
		EntityType: "Collection",
		EntityID:   id,
		Detail:     map[string]any{"level": level},
	})
	return level, nil
}

// WriteOffCollection retires a collection. Privileged actors only.
func (s *LedgerService) WriteOffCollection(ctx context.Context, id uuid.UUID, reason string, actor identity.Actor) error {
	if !actor.Role.CanDeleteDirectly() {
		return shared.NewDomainError("FORBIDDEN", "Role may not write off collections")
	}

	err := withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			collection, err := repos.Collections().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if collection == nil {
				return shared.ErrNotFound
			}
			if err := collection.WriteOff(reason, actor.ID); err != nil {
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
		Action:     "collection.written_off",
		EntityType: "Collection",
		EntityID:   id,
		Detail:     map[string]any{"reason": reason},
	})

	s.logger.Info("collection written off",
		zap.String("collection_id", id.String()),
		zap.String("reason", reason))
	return nil
}

// LogCommunicationRequest carries the input for logging a customer contact
type LogCommunicationRequest struct {
	CollectionID   uuid.UUID
	Channel        collections.CommunicationChannel
	Summary        string
	Outcome        collections.CommunicationOutcome
	PromisedAmount *int64
	PromisedDate   *time.Time
	OccurredAt     time.Time
	Actor          identity.Actor
}

// LogCommunication records a customer contact. A promise-to-pay captured
// during the contact is also stamped on the collection itself.
func (s *LedgerService) LogCommunication(ctx context.Context, req LogCommunicationRequest) (*collections.CommunicationLog, error) {
	var log *collections.CommunicationLog

	err := withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			collection, err := repos.Collections().FindByID(ctx, req.CollectionID)
			if err != nil {
				return err
			}
			if collection == nil {
				return shared.ErrNotFound
			}

			log, err = collections.NewCommunicationLog(
				req.CollectionID, req.Channel, req.Summary, req.Outcome, req.Actor.ID, req.OccurredAt)
			if err != nil {
				return err
			}

			if req.PromisedAmount != nil && req.PromisedDate != nil {
				if err := log.WithPromise(*req.PromisedAmount, *req.PromisedDate); err != nil {
					return err
				}
				if err := collection.RecordPromise(*req.PromisedAmount, *req.PromisedDate); err != nil {
					return err
				}
				if err := repos.Collections().SaveWithLock(ctx, collection); err != nil {
					return err
				}
			}

			return repos.Communications().Save(ctx, log)
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      req.Actor.ID,
		Action:     "communication.logged",
		EntityType: "CommunicationLog",
		EntityID:   log.ID,
		Detail: map[string]any{
			"collection_id": req.CollectionID.String(),
			"channel":       string(req.Channel),
			"outcome":       string(req.Outcome),
		},
	})

	return log, nil
}

// ListCommunications returns the contact history for a collection
func (s *LedgerService) ListCommunications(ctx context.Context, collectionID uuid.UUID) ([]collections.CommunicationLog, error) {
	var logs []collections.CommunicationLog
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		logs, err = repos.Communications().FindByCollection(ctx, collectionID)
		return err
	})
	return logs, err
}

// RunAgingSweep refreshes aging for every open collection and promotes
// past-due ones to OVERDUE. Per-item failures are logged and skipped so one
// bad row never stalls the sweep. Returns the number of updated collections.
func (s *LedgerService) RunAgingSweep(ctx context.Context, now time.Time) (int, error) {
	var open []collections.Collection
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		open, err = repos.Collections().FindOpen(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load open collections: %w", err)
	}

	updated := 0
	for i := range open {
		collection := &open[i]
		if !collection.RecomputeAging(now) {
			continue
		}

		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			return repos.Collections().SaveWithLock(ctx, collection)
		})
		if err != nil {
			// Lost a race with a concurrent writer; the next sweep catches up.
			s.logger.Warn("aging sweep skipped collection",
				zap.String("collection_id", collection.ID.String()),
				zap.Error(err))
			continue
		}
		updated++

		if collection.Status == collections.CollectionStatusOverdue {
			s.remindOverdue(ctx, collection)
		}
	}

	s.logger.Info("aging sweep completed",
		zap.Int("open", len(open)),
		zap.Int("updated", updated))

	return updated, nil
}

// remindOverdue sends an overdue reminder unless one was sent recently
func (s *LedgerService) remindOverdue(ctx context.Context, collection *collections.Collection) {
	allowed, err := s.throttle.Allow(ctx, "overdue:"+collection.ID.String(), s.reminderWindow)
	if err != nil {
		s.logger.Warn("reminder throttle check failed",
			zap.String("collection_id", collection.ID.String()),
			zap.Error(err))
		return
	}
	if allowed {
		s.notifier.CollectionOverdue(ctx, collection)
	}
}
