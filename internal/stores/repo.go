package stores

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
)

// Repository stores one row per supplier; the store id is the supplier's
// user id, so the primary key is the uniqueness guarantee.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	return gorm.G[models.Store](r.db).Create(ctx, store)
}

// FindBySupplier returns gorm.ErrRecordNotFound when the supplier has not
// opened a store.
func (r *Repository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) (*models.Store, error) {
	store, err := gorm.G[models.Store](r.db).Where("id = ?", supplierID).First(ctx)
	if err != nil {
		return nil, err
	}
	return &store, nil
}
