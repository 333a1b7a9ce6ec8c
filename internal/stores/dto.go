package stores

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
	"github.com/angelmondragon/vendorverse-backend/pkg/validation"
)

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url,omitempty"`
	SupplierID  uuid.UUID `json:"supplier_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateStoreInput is the supplier-provided part of a new store.
type CreateStoreInput struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"required,max=2000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// Validate checks the trimmed input without touching storage.
func (in CreateStoreInput) Validate() error {
	return validation.Struct(in.normalized())
}

func (in CreateStoreInput) normalized() CreateStoreInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.ImageURL != nil {
		trimmed := strings.TrimSpace(*in.ImageURL)
		if trimmed == "" {
			in.ImageURL = nil
		} else {
			in.ImageURL = &trimmed
		}
	}
	return in
}

// toModel keys the store by the supplier so each supplier owns at most one.
func (in CreateStoreInput) toModel(supplierID uuid.UUID) *models.Store {
	return &models.Store{
		ID:          supplierID,
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		SupplierID:  supplierID,
	}
}

// FromModel maps a store row to its DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		SupplierID:  m.SupplierID,
		CreatedAt:   m.CreatedAt,
	}
}
