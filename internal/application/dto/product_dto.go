package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU          string          `json:"sku" validate:"required,min=1,max=100"`
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description" validate:"max=1000"`
	Unit         string          `json:"unit" validate:"max=30"`
	Price        decimal.Decimal `json:"price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	InitialStock decimal.Decimal `json:"initial_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
}

// UpdateProductRequest entrada para actualizar un producto (sin InitialStock ni Stock).
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Unit        *string          `json:"unit" validate:"omitempty,max=30"`
	Price       *decimal.Decimal `json:"price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	MinStock    *decimal.Decimal `json:"min_stock"`
}

// ProductResponse salida de un producto. OnHand es el stock reconciliado; Stock el valor materializado.
type ProductResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	InitialStock decimal.Decimal `json:"initial_stock"`
	Stock        decimal.Decimal `json:"stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	OnHand       decimal.Decimal `json:"on_hand"`
	OnHandLabel  string          `json:"on_hand_label"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
