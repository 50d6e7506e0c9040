package repository

import (
	"context"

	"github.com/jhoicas/facturati-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateLine(ctx context.Context, line *entity.InvoiceLine) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetLinesByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error)
	// ListLinesByProduct devuelve todas las líneas (de todas las facturas) asociadas al producto.
	ListLinesByProduct(ctx context.Context, productID string) ([]*entity.InvoiceLine, error)
	ListLinesByCompany(ctx context.Context, companyID string) ([]*entity.InvoiceLine, error)
}
