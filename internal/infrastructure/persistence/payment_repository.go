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

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID. Returns nil when no row matches.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*collections.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCollection finds payments recorded against a collection
func (r *GormPaymentRepository) FindByCollection(ctx context.Context, collectionID uuid.UUID) ([]collections.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("payment_date DESC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	result := make([]collections.Payment, len(paymentModels))
	for i, model := range paymentModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// FindAll finds payments with filtering
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter collections.PaymentFilter) ([]collections.Payment, error) {
	var paymentModels []models.PaymentModel
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	if filter.CollectionID != nil {
		query = query.Where("collection_id = ?", *filter.CollectionID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.RecordedBy != nil {
		query = query.Where("recorded_by = ?", *filter.RecordedBy)
	}
	query = applySort(query, filter.Filter, paymentSortColumns)
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	result := make([]collections.Payment, len(paymentModels))
	for i, model := range paymentModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *collections.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveResolution persists a terminal transition conditionally: the update only
// applies while the stored row is still PENDING_APPROVAL. Zero rows affected
// means another caller resolved the payment first.
func (r *GormPaymentRepository) SaveResolution(ctx context.Context, payment *collections.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)

	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ? AND status = ?", model.ID, string(collections.PaymentStatusPendingApproval)).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyResolved
	}
	return nil
}

// Delete removes a payment record
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id).Error
}

var paymentSortColumns = map[string]bool{
	"created_at":   true,
	"payment_date": true,
	"amount":       true,
}
