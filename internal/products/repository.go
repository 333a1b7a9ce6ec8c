package products

import (
	"context"

	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository is the product persistence surface used by the catalog
// sync and the supplier management service.
type ProductRepository interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	ListScoped(ctx context.Context, storeID, supplierID uuid.UUID) ([]models.Product, error)
	FindScoped(ctx context.Context, storeID, supplierID, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, storeID, supplierID, id uuid.UUID) error
}

// Repository is the GORM-backed ProductRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a repository to conn.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// ListAll returns every product in server order.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ListScoped returns the products owned by one store and supplier.
func (r *Repository) ListScoped(ctx context.Context, storeID, supplierID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND supplier_id = ?", storeID, supplierID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindScoped(ctx context.Context, storeID, supplierID, id uuid.UUID) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ? AND supplier_id = ?", id, storeID, supplierID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update overwrites the editable columns of product. It reports
// gorm.ErrRecordNotFound when no row in the product's scope matches.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store_id = ? AND supplier_id = ?", product.ID, product.StoreID, product.SupplierID).
		Updates(map[string]any{
			"name":      product.Name,
			"price":     product.Price,
			"unit":      product.Unit,
			"stock":     product.Stock,
			"image_url": product.ImageURL,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes one scoped product, reporting gorm.ErrRecordNotFound when
// nothing matched.
func (r *Repository) Delete(ctx context.Context, storeID, supplierID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ? AND supplier_id = ?", id, storeID, supplierID).
		Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
