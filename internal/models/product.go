package models

import (
	"time"

	"github.com/google/uuid"
)

// Product stock is the authoritative inventory count; it is only ever
// decremented during order fulfillment, never by cart operations.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	ImageURL  string    `json:"img_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Price    float64 `json:"price" validate:"gte=0"`
	Stock    int     `json:"stock" validate:"gte=0"`
	ImageURL string  `json:"img_url,omitempty"`
}

type UpdateProductRequest struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Price    *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock    *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	ImageURL *string  `json:"img_url,omitempty"`
}
