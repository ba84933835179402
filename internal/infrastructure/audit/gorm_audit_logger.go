package audit

import (
	"context"

	appcollections "github.com/arcollect/backend/internal/application/collections"
	"github.com/arcollect/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormAuditLogger records audit entries to the database. Recording is
// best-effort: a failed write is logged and never surfaced to the caller,
// so audit trouble cannot roll back a business operation.
type GormAuditLogger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormAuditLogger creates a new GormAuditLogger
func NewGormAuditLogger(db *gorm.DB, logger *zap.Logger) *GormAuditLogger {
	return &GormAuditLogger{
		db:     db,
		logger: logger.Named("audit"),
	}
}

// Record writes one audit entry
func (l *GormAuditLogger) Record(ctx context.Context, entry appcollections.AuditEntry) {
	model := models.AuditEntryModel{
		ID:         uuid.New(),
		Actor:      entry.Actor,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Detail:     models.JSONMap(entry.Detail),
	}

	if err := l.db.WithContext(ctx).Create(&model).Error; err != nil {
		l.logger.Error("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.String("entity_type", entry.EntityType),
			zap.String("entity_id", entry.EntityID.String()),
			zap.Error(err),
		)
	}
}

// Ensure GormAuditLogger implements AuditLogger
var _ appcollections.AuditLogger = (*GormAuditLogger)(nil)
