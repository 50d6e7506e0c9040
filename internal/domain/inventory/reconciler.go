// Package inventory contiene las reglas puras del libro de stock: reconciliación, ajustes y formato.
// Ninguna función de este paquete hace I/O.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/domain/entity"
)

// CurrentStock calcula el stock disponible de un producto desde cero:
//
//	stock = InitialStock + Σ ajustes del producto − Σ cantidades vendidas en líneas de factura del producto
//
// No usa product.Stock ni las fotos PreviousStock/NewStock de los movimientos, y no aplica piso en cero.
// Depende solo de sumas, así que el orden de movements y lines no importa.
func CurrentStock(product *entity.Product, movements []*entity.StockMovement, lines []*entity.InvoiceLine) decimal.Decimal {
	if product == nil {
		return decimal.Zero
	}
	return product.InitialStock.
		Add(AdjustmentTotal(product.ID, movements)).
		Sub(SalesTotal(product.ID, lines))
}

// CalculateCurrentStock busca el producto en el conjunto cargado y lo reconcilia.
// Si el producto no está en products devuelve 0 (sin error).
func CalculateCurrentStock(
	productID string,
	products []*entity.Product,
	movements []*entity.StockMovement,
	lines []*entity.InvoiceLine,
) decimal.Decimal {
	for _, p := range products {
		if p != nil && p.ID == productID {
			return CurrentStock(p, movements, lines)
		}
	}
	return decimal.Zero
}

// AdjustmentTotal suma las cantidades de los movimientos de tipo adjustment del producto.
func AdjustmentTotal(productID string, movements []*entity.StockMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		if m == nil || m.ProductID != productID || m.Type != entity.MovementTypeAdjustment {
			continue
		}
		total = total.Add(m.Quantity)
	}
	return total
}

// SalesTotal suma las cantidades vendidas del producto en todas las líneas de factura recibidas.
func SalesTotal(productID string, lines []*entity.InvoiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l == nil || l.ProductID == "" || l.ProductID != productID {
			continue
		}
		total = total.Add(l.Quantity)
	}
	return total
}
