package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProductImportLog is the audit trail of one spreadsheet import run.
type ProductImportLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobID      *uuid.UUID `gorm:"type:uuid;index"`
	FileName   string     `gorm:"not null"`
	TotalRows  int        `gorm:"not null"`
	Imported   int        `gorm:"not null"`
	Failed     int        `gorm:"not null"`
	Errors     datatypes.JSON
	TimedOut   bool `gorm:"not null;default:false"`
	StartedAt  time.Time
	FinishedAt time.Time
}
