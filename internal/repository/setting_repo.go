package repository

import (
	"context"
	"errors"

	"inventapro/internal/model"

	"gorm.io/gorm"
)

type SettingRepository interface {
	// GetValue returns "" without error when the key is not set.
	GetValue(ctx context.Context, key string) (string, error)
}

type settingRepo struct{ db *gorm.DB }

func NewSettingRepository(db *gorm.DB) SettingRepository { return &settingRepo{db: db} }

func (r *settingRepo) GetValue(ctx context.Context, key string) (string, error) {
	var s model.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Value, nil
}
