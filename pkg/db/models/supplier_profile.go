package models

import (
	"time"

	"github.com/google/uuid"
)

// SupplierProfile holds a supplier's contact details, keyed by the supplier's
// user ID.
type SupplierProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Contact   string    `gorm:"column:contact;not null"`
	Location  string    `gorm:"column:location;not null"`
	Email     string    `gorm:"column:email;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the table name used by the migrations.
func (SupplierProfile) TableName() string {
	return "supplier_profiles"
}
