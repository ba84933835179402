package persistence

import (
	"context"

	appcollections "github.com/arcollect/backend/internal/application/collections"
	"github.com/arcollect/backend/internal/domain/approval"
	"github.com/arcollect/backend/internal/domain/collections"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcollections.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Collections returns the collection repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Collections() collections.CollectionRepository {
	return NewGormCollectionRepository(r.tx)
}

// Payments returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Payments() collections.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Communications returns the communication log repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Communications() collections.CommunicationLogRepository {
	return NewGormCommunicationLogRepository(r.tx)
}

// ChangeRequests returns the change request repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ChangeRequests() approval.ChangeRequestRepository {
	return NewGormChangeRequestRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appcollections.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appcollections.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
