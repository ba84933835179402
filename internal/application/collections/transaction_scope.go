package collections

import (
	"context"

	"github.com/arcollect/backend/internal/domain/approval"
	"github.com/arcollect/backend/internal/domain/collections"
)

// TransactionScope provides transactional access to the collection repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll back
// atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// Collections returns the collection repository scoped to the current transaction
	Collections() collections.CollectionRepository
	// Payments returns the payment repository scoped to the current transaction
	Payments() collections.PaymentRepository
	// Communications returns the communication log repository scoped to the current transaction
	Communications() collections.CommunicationLogRepository
	// ChangeRequests returns the change request repository scoped to the current transaction
	ChangeRequests() approval.ChangeRequestRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	collectionRepo    collections.CollectionRepository
	paymentRepo       collections.PaymentRepository
	communicationRepo collections.CommunicationLogRepository
	changeRequestRepo approval.ChangeRequestRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	collectionRepo collections.CollectionRepository,
	paymentRepo collections.PaymentRepository,
	communicationRepo collections.CommunicationLogRepository,
	changeRequestRepo approval.ChangeRequestRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		collectionRepo:    collectionRepo,
		paymentRepo:       paymentRepo,
		communicationRepo: communicationRepo,
		changeRequestRepo: changeRequestRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Collections returns the collection repository.
func (s *NoOpTransactionScope) Collections() collections.CollectionRepository {
	return s.collectionRepo
}

// Payments returns the payment repository.
func (s *NoOpTransactionScope) Payments() collections.PaymentRepository {
	return s.paymentRepo
}

// Communications returns the communication log repository.
func (s *NoOpTransactionScope) Communications() collections.CommunicationLogRepository {
	return s.communicationRepo
}

// ChangeRequests returns the change request repository.
func (s *NoOpTransactionScope) ChangeRequests() approval.ChangeRequestRepository {
	return s.changeRequestRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
