package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductCategory classifies products. Created on the fly by imports.
type ProductCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Brand struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BaseUnit is the canonical unit a product is stocked in (piece, kilogram, meter…).
type BaseUnit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unit is a sale or purchase unit defined relative to a BaseUnit
// (e.g. "box" over "piece"). Names repeat across base units.
type Unit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null;index"`
	ShortName string
	BaseUnit  uuid.UUID `gorm:"column:base_unit;type:uuid;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
