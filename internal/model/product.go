package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents an item in the catalogue.
type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Price         float64   `json:"price" db:"price"`
	StockQuantity int       `json:"stock_quantity" db:"stock_quantity"`
	Size          int       `json:"size" db:"size"`
	Color         string    `json:"color" db:"color"`
	Description   string    `json:"description" db:"description"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ProductCreateRequest represents the payload for creating a product.
type ProductCreateRequest struct {
	Name          string  `json:"name" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
	Size          int     `json:"size"`
	Color         string  `json:"color"`
	Description   string  `json:"description"`
}

// ProductUpdateRequest carries a partial product update; nil fields are left untouched.
type ProductUpdateRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	StockQuantity *int     `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	Size          *int     `json:"size,omitempty"`
	Color         *string  `json:"color,omitempty"`
	Description   *string  `json:"description,omitempty"`
}

// Apply copies the provided fields onto p.
func (r *ProductUpdateRequest) Apply(p *Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.StockQuantity != nil {
		p.StockQuantity = *r.StockQuantity
	}
	if r.Size != nil {
		p.Size = *r.Size
	}
	if r.Color != nil {
		p.Color = *r.Color
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
}
