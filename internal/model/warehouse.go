package model

import (
	"time"

	"github.com/google/uuid"
)

type Warehouse struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Phone     *string
	Country   *string
	City      *string
	Email     *string
	ZipCode   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Email     *string
	Phone     *string
	Country   *string
	City      *string
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
