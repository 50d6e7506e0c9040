package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/domain/entity"
)

// StockLevel clasificación del stock disponible frente al umbral mínimo.
type StockLevel string

const (
	StockLevelOut StockLevel = "rupture"
	StockLevelLow StockLevel = "faible"
	StockLevelOK  StockLevel = "ok"
)

// ClassifyStock clasifica el stock reconciliado. Nunca se usa el campo Stock materializado.
func ClassifyStock(onHand, minStock decimal.Decimal) StockLevel {
	if !onHand.IsPositive() {
		return StockLevelOut
	}
	if minStock.IsPositive() && onHand.LessThanOrEqual(minStock) {
		return StockLevelLow
	}
	return StockLevelOK
}

// Label texto mostrado en los badges.
func (l StockLevel) Label() string {
	switch l {
	case StockLevelOut:
		return "Rupture de stock"
	case StockLevelLow:
		return "Stock faible"
	default:
		return "En stock"
	}
}

// MovementTypeLabel etiqueta localizada de un tipo de movimiento.
func MovementTypeLabel(t string) string {
	switch t {
	case entity.MovementTypeInitial:
		return "Stock initial"
	case entity.MovementTypeSale:
		return "Vente"
	case entity.MovementTypeAdjustment:
		return "Ajustement"
	case entity.MovementTypeReturn:
		return "Retour"
	}
	return t
}
