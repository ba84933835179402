package persistence

import (
	"context"
	"errors"

	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/arcollect/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCollectionRepository implements CollectionRepository using GORM
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewGormCollectionRepository creates a new GormCollectionRepository
func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

// FindByID finds a collection by its ID. Returns nil when no row matches.
func (r *GormCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*collections.Collection, error) {
	var model models.CollectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceNumber finds a collection by its invoice number
func (r *GormCollectionRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*collections.Collection, error) {
	var model models.CollectionModel
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds collections with filtering
func (r *GormCollectionRepository) FindAll(ctx context.Context, filter collections.CollectionFilter) ([]collections.Collection, error) {
	var collectionModels []models.CollectionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CollectionModel{}), filter)
	query = applySort(query, filter.Filter, collectionSortColumns)
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&collectionModels).Error; err != nil {
		return nil, err
	}
	result := make([]collections.Collection, len(collectionModels))
	for i, model := range collectionModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// FindOpen finds all collections the aging sweep must visit
func (r *GormCollectionRepository) FindOpen(ctx context.Context) ([]collections.Collection, error) {
	var collectionModels []models.CollectionModel
	if err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{
			string(collections.CollectionStatusPaid),
			string(collections.CollectionStatusWrittenOff),
		}).
		Find(&collectionModels).Error; err != nil {
		return nil, err
	}
	result := make([]collections.Collection, len(collectionModels))
	for i, model := range collectionModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// Save creates or updates a collection
func (r *GormCollectionRepository) Save(ctx context.Context, collection *collections.Collection) error {
	var model models.CollectionModel
	model.FromDomain(collection)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with optimistic locking: the update only applies if the
// stored version is one behind the aggregate's. A zero rows-affected result
// means another writer got there first.
func (r *GormCollectionRepository) SaveWithLock(ctx context.Context, collection *collections.Collection) error {
	var model models.CollectionModel
	model.FromDomain(collection)

	result := r.db.WithContext(ctx).
		Model(&models.CollectionModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts collections matching the filter
func (r *GormCollectionRepository) Count(ctx context.Context, filter collections.CollectionFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CollectionModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumOutstanding calculates the total open balance across collections
func (r *GormCollectionRepository) SumOutstanding(ctx context.Context) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.CollectionModel{}).
		Where("status <> ?", string(collections.CollectionStatusWrittenOff)).
		Select("SUM(outstanding_amount)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *GormCollectionRepository) applyFilter(query *gorm.DB, filter collections.CollectionFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("status = ?", string(collections.CollectionStatusOverdue))
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.MinOutstanding != nil {
		query = query.Where("outstanding_amount >= ?", *filter.MinOutstanding)
	}
	if filter.MaxOutstanding != nil {
		query = query.Where("outstanding_amount <= ?", *filter.MaxOutstanding)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number LIKE ? OR customer_name LIKE ?", pattern, pattern)
	}
	return query
}

var collectionSortColumns = map[string]bool{
	"created_at":         true,
	"due_date":           true,
	"outstanding_amount": true,
	"aging_days":         true,
	"invoice_number":     true,
}
