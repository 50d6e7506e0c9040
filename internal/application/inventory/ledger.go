package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/inventory"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
)

// reconcileInTx carga el historial del producto y calcula su stock disponible.
// excludeInvoiceID deja fuera las líneas de la factura que se está creando.
func reconcileInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	invoiceRepo repository.InvoiceRepository,
	product *entity.Product,
	excludeInvoiceID string,
) (decimal.Decimal, error) {
	movements, err := movRepo.ListByProduct(ctx, product.ID, nil, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cargar movimientos: %w", err)
	}
	lines, err := invoiceRepo.ListLinesByProduct(ctx, product.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cargar líneas de factura: %w", err)
	}
	if excludeInvoiceID != "" {
		kept := lines[:0:0]
		for _, l := range lines {
			if l.InvoiceID != excludeInvoiceID {
				kept = append(kept, l)
			}
		}
		lines = kept
	}
	return inventory.CurrentStock(product, movements, lines), nil
}
