package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor opens a database transaction scoped to fn. fn's error rolls it back.
// Services depend on this instead of *gorm.DB so tests can swap in an in-memory
// implementation with the same commit/rollback contract.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct{ db *gorm.DB }

func NewTransactor(db *gorm.DB) Transactor { return &gormTransactor{db: db} }

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
