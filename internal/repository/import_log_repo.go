package repository

import (
	"context"

	"inventapro/internal/model"

	"gorm.io/gorm"
)

type ImportLogRepository interface {
	Create(ctx context.Context, l *model.ProductImportLog) error
	ListRecent(ctx context.Context, limit int) ([]model.ProductImportLog, error)
}

type importLogRepo struct{ db *gorm.DB }

func NewImportLogRepository(db *gorm.DB) ImportLogRepository { return &importLogRepo{db: db} }

func (r *importLogRepo) Create(ctx context.Context, l *model.ProductImportLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *importLogRepo) ListRecent(ctx context.Context, limit int) ([]model.ProductImportLog, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var logs []model.ProductImportLog
	err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
