package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
)

// Repository persists supplier profiles keyed by the supplier's user id.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) Create(ctx context.Context, profile *models.SupplierProfile) error {
	return gorm.G[models.SupplierProfile](r.db).Create(ctx, profile)
}

func (r *Repository) FindByID(ctx context.Context, supplierID uuid.UUID) (*models.SupplierProfile, error) {
	profile, err := gorm.G[models.SupplierProfile](r.db).Where("id = ?", supplierID).First(ctx)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
