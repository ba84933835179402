package persistence

import (
	"context"
	"errors"

	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/arcollect/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCommunicationLogRepository implements CommunicationLogRepository using GORM
type GormCommunicationLogRepository struct {
	db *gorm.DB
}

// NewGormCommunicationLogRepository creates a new GormCommunicationLogRepository
func NewGormCommunicationLogRepository(db *gorm.DB) *GormCommunicationLogRepository {
	return &GormCommunicationLogRepository{db: db}
}

// FindByID finds a communication log by its ID. Returns nil when no row matches.
func (r *GormCommunicationLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*collections.CommunicationLog, error) {
	var model models.CommunicationLogModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCollection finds logs recorded against a collection, newest first
func (r *GormCommunicationLogRepository) FindByCollection(ctx context.Context, collectionID uuid.UUID) ([]collections.CommunicationLog, error) {
	var logModels []models.CommunicationLogModel
	if err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("occurred_at DESC").
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	result := make([]collections.CommunicationLog, len(logModels))
	for i, model := range logModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// Save creates or updates a communication log
func (r *GormCommunicationLogRepository) Save(ctx context.Context, log *collections.CommunicationLog) error {
	var model models.CommunicationLogModel
	model.FromDomain(log)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a communication log
func (r *GormCommunicationLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CommunicationLogModel{}, "id = ?", id).Error
}
