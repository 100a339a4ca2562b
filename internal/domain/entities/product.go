package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalogue row keyed by the natural SKU. PrimaryImageID is a
// weak reference: its presence does not own the Image, and it is nulled
// when the referenced Image is deleted.
type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SKU            string          `gorm:"size:100;uniqueIndex;not null"`
	Name           string          `gorm:"size:255;not null"`
	Description    string          `gorm:"type:text"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockQuantity  int             `gorm:"not null"`
	Status         string          `gorm:"size:20;not null;default:active"`
	PrimaryImageID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Product) TableName() string { return "products" }
