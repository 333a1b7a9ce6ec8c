package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a supplier's storefront. Its ID is the owning supplier's user ID,
// which makes "one store per supplier" a primary key constraint.
type Store struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null"`
	ImageURL    *string   `gorm:"column:image_url"`
	SupplierID  uuid.UUID `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
