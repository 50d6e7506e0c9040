package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	Number     string               `json:"number" validate:"max=50"`
	ClientName string               `json:"client_name" validate:"required,max=200"`
	Date       *time.Time           `json:"date,omitempty"`
	Items      []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// InvoiceItemRequest una línea. ProductID es opcional: si falta se busca el producto por Description.
type InvoiceItemRequest struct {
	ProductID   string           `json:"product_id"`
	Description string           `json:"description" validate:"required_without=ProductID,max=300"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

// InvoiceResponse salida de una factura con sus líneas.
type InvoiceResponse struct {
	ID         string                `json:"id"`
	CompanyID  string                `json:"company_id"`
	Number     string                `json:"number"`
	ClientName string                `json:"client_name"`
	Date       string                `json:"date"`
	NetTotal   decimal.Decimal       `json:"net_total"`
	TaxTotal   decimal.Decimal       `json:"tax_total"`
	GrandTotal decimal.Decimal       `json:"grand_total"`
	Lines      []InvoiceLineResponse `json:"lines"`
}

// InvoiceLineResponse salida de una línea de factura.
type InvoiceLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}
