package suppliers

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
	"github.com/angelmondragon/vendorverse-backend/pkg/validation"
)

// ProfileDTO exposes a supplier profile in API responses.
type ProfileDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Location  string    `json:"location"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProfileInput is the supplier-provided part of a profile. The email
// comes from the authenticated identity, never from the request.
type CreateProfileInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Contact  string `json:"contact" validate:"required,max=120"`
	Location string `json:"location" validate:"required,max=200"`
}

// Validate checks the trimmed input without touching storage.
func (in CreateProfileInput) Validate() error {
	return validation.Struct(in.normalized())
}

func (in CreateProfileInput) normalized() CreateProfileInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Location = strings.TrimSpace(in.Location)
	return in
}

func (in CreateProfileInput) toModel(supplierID uuid.UUID, email string) *models.SupplierProfile {
	return &models.SupplierProfile{
		ID:       supplierID,
		Name:     in.Name,
		Contact:  in.Contact,
		Location: in.Location,
		Email:    email,
	}
}

// FromModel maps a profile row to its DTO.
func FromModel(m *models.SupplierProfile) *ProfileDTO {
	if m == nil {
		return nil
	}
	return &ProfileDTO{
		ID:        m.ID,
		Name:      m.Name,
		Contact:   m.Contact,
		Location:  m.Location,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}
