package entities

import (
	"time"

	"github.com/google/uuid"
)

// RowError is one entry of an ImportLog's error_details, naming the
// originating row and every validation message collected for it.
type RowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

// ImportLog is the audit record for one CSV import run.
//
// Invariant: Imported + Updated + Invalid + Duplicate <= Total, with
// equality required once Status reaches a terminal value.
type ImportLog struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Filename               string     `gorm:"size:500;not null"`
	FileHash               string     `gorm:"size:64"`
	Status                 string     `gorm:"size:30;not null;index"`
	TotalRows              int        `gorm:"not null;default:0"`
	ImportedRows           int        `gorm:"not null;default:0"`
	UpdatedRows            int        `gorm:"not null;default:0"`
	InvalidRows            int        `gorm:"not null;default:0"`
	DuplicateRows          int        `gorm:"not null;default:0"`
	ErrorDetails          []RowError `gorm:"type:jsonb;serializer:json"`
	StartedAt             time.Time
	CompletedAt           *time.Time
	ProcessingTimeSeconds float64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (ImportLog) TableName() string { return "import_logs" }
