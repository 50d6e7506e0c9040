package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de stock.
const (
	MovementTypeInitial    = "initial"    // stock de apertura al crear el producto
	MovementTypeSale       = "sale"       // salida generada por una factura
	MovementTypeAdjustment = "adjustment" // corrección manual con motivo
	MovementTypeReturn     = "return"     // reservado; ningún flujo lo produce
)

// IsValidMovementType indica si t es uno de los tipos conocidos.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeInitial, MovementTypeSale, MovementTypeAdjustment, MovementTypeReturn:
		return true
	}
	return false
}

// StockMovement es una entrada inmutable del libro de movimientos.
// PreviousStock y NewStock son una foto tomada al escribir; son de auditoría y no se usan para calcular el stock.
type StockMovement struct {
	ID                 string
	CompanyID          string
	ProductID          string
	ProductName        string
	Type               string
	Quantity           decimal.Decimal // delta con signo (positivo = entrada)
	PreviousStock      decimal.Decimal
	NewStock           decimal.Decimal
	Reason             string
	Reference          string // número de factura, nota...
	UserID             string
	UserName           string
	Date               time.Time // fecha efectiva elegida por el usuario
	AdjustmentDateTime *time.Time
	CreatedAt          time.Time
}
