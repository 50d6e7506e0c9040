package entity

import "github.com/shopspring/decimal"

// InvoiceLine representa una línea de factura.
// ProductID se resuelve una sola vez al crear la factura; vacío si la descripción no corresponde a ningún producto.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	ProductID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Subtotal    decimal.Decimal
}
