package products

import (
	"strings"
	"time"

	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
	"github.com/angelmondragon/vendorverse-backend/pkg/money"
	"github.com/google/uuid"
)

// ProductDTO is the wire and in-memory shape of a catalog listing.
type ProductDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Unit       string    `json:"unit"`
	Stock      int       `json:"stock"`
	ImageURL   string    `json:"image_url"`
	StoreID    uuid.UUID `json:"store_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Input is the supplier-editable part of a product. Price and Stock are
// pointers so a missing value fails "required" instead of reading as zero.
// Price is checked after rounding to cents, the precision it is stored at.
type Input struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Price    *float64 `json:"price" validate:"required,price"`
	Unit     string   `json:"unit" validate:"required,max=32"`
	Stock    *int     `json:"stock" validate:"required,gte=0"`
	ImageURL string   `json:"image_url" validate:"required,url"`
}

func (in Input) normalized() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

func (in Input) apply(p *models.Product) {
	p.Name = in.Name
	p.Price = money.Price(*in.Price).Round(2)
	p.Unit = in.Unit
	p.Stock = *in.Stock
	p.ImageURL = in.ImageURL
}

// FromModel maps a persisted product to its DTO.
func FromModel(p models.Product) ProductDTO {
	return ProductDTO{
		ID:         p.ID,
		Name:       p.Name,
		Price:      money.Float(p.Price),
		Unit:       p.Unit,
		Stock:      p.Stock,
		ImageURL:   p.ImageURL,
		StoreID:    p.StoreID,
		SupplierID: p.SupplierID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// FromModels maps a result set, preserving order.
func FromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
