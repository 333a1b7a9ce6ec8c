package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing owned by a supplier's store.
type Product struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	StoreID    uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index:idx_products_store_supplier"`
	SupplierID uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;index:idx_products_store_supplier"`
	Name       string          `gorm:"column:name;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Unit       string          `gorm:"column:unit;not null"`
	Stock      int             `gorm:"column:stock;not null;default:0"`
	ImageURL   string          `gorm:"column:image_url;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key client side so sqlite and postgres
// behave the same.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
