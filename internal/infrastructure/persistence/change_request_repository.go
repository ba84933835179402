package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/arcollect/backend/internal/domain/approval"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/arcollect/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChangeRequestRepository implements ChangeRequestRepository using GORM
type GormChangeRequestRepository struct {
	db *gorm.DB
}

// NewGormChangeRequestRepository creates a new GormChangeRequestRepository
func NewGormChangeRequestRepository(db *gorm.DB) *GormChangeRequestRepository {
	return &GormChangeRequestRepository{db: db}
}

// FindByID finds a change request by its ID. Returns nil when no row matches.
func (r *GormChangeRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*approval.ChangeRequest, error) {
	var model models.ChangeRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds change requests with filtering
func (r *GormChangeRequestRepository) FindAll(ctx context.Context, filter approval.ChangeRequestFilter) ([]approval.ChangeRequest, error) {
	var requestModels []models.ChangeRequestModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ChangeRequestModel{}), filter)
	query = applySort(query, filter.Filter, changeRequestSortColumns)
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&requestModels).Error; err != nil {
		return nil, err
	}
	result := make([]approval.ChangeRequest, len(requestModels))
	for i, model := range requestModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// FindPendingByTarget finds pending requests against a target record
func (r *GormChangeRequestRepository) FindPendingByTarget(ctx context.Context, targetID uuid.UUID) ([]approval.ChangeRequest, error) {
	var requestModels []models.ChangeRequestModel
	if err := r.db.WithContext(ctx).
		Where("target_id = ? AND status = ?", targetID, string(approval.RequestStatusPending)).
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	result := make([]approval.ChangeRequest, len(requestModels))
	for i, model := range requestModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// FindDue finds pending requests whose auto-approval deadline has passed
func (r *GormChangeRequestRepository) FindDue(ctx context.Context, now time.Time) ([]approval.ChangeRequest, error) {
	var requestModels []models.ChangeRequestModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND auto_approve_at <= ?", string(approval.RequestStatusPending), now).
		Order("auto_approve_at ASC").
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	result := make([]approval.ChangeRequest, len(requestModels))
	for i, model := range requestModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// Save creates or updates a change request
func (r *GormChangeRequestRepository) Save(ctx context.Context, request *approval.ChangeRequest) error {
	var model models.ChangeRequestModel
	model.FromDomain(request)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveResolution persists a terminal transition conditionally: the update only
// applies while the stored row is still PENDING. Zero rows affected means
// another caller resolved the request first.
func (r *GormChangeRequestRepository) SaveResolution(ctx context.Context, request *approval.ChangeRequest) error {
	var model models.ChangeRequestModel
	model.FromDomain(request)

	result := r.db.WithContext(ctx).
		Model(&models.ChangeRequestModel{}).
		Where("id = ? AND status = ?", model.ID, string(approval.RequestStatusPending)).
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

// Count counts change requests matching the filter
func (r *GormChangeRequestRepository) Count(ctx context.Context, filter approval.ChangeRequestFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ChangeRequestModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormChangeRequestRepository) applyFilter(query *gorm.DB, filter approval.ChangeRequestFilter) *gorm.DB {
	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.TargetID != nil {
		query = query.Where("target_id = ?", *filter.TargetID)
	}
	if filter.RequestedBy != nil {
		query = query.Where("requested_by = ?", *filter.RequestedBy)
	}
	return query
}

var changeRequestSortColumns = map[string]bool{
	"created_at":      true,
	"auto_approve_at": true,
}
