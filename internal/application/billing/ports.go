package billing

import (
	"context"

	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y facturación.
type BillingTxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// SalesRecorder integra facturación con el libro de stock.
// RecordSalesInTx escribe los movimientos sale usando los repositorios del caller (misma transacción).
// Si retorna error, el caller hace rollback y la factura no se crea.
type SalesRecorder interface {
	RecordSalesInTx(
		ctx context.Context,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		invoice *entity.Invoice,
		lines []*entity.InvoiceLine,
		actor entity.Actor,
	) ([]*entity.StockMovement, error)
}

// InvoicePDFGenerator genera la representación PDF de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, lines []InvoiceLineForPDF) ([]byte, error)
}

// InvoiceLineForPDF línea enriquecida con el nombre y la unidad del producto.
type InvoiceLineForPDF struct {
	entity.InvoiceLine
	ProductName string
	Unit        string
}
