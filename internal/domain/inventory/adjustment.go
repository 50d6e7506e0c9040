package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/domain"
)

// AdjustmentMode modo de ajuste manual elegido por el usuario.
type AdjustmentMode string

const (
	ModeAdd      AdjustmentMode = "add"
	ModeSubtract AdjustmentMode = "subtract"
	ModeSet      AdjustmentMode = "set"
)

// ParseAdjustmentMode valida el modo recibido en la petición.
func ParseAdjustmentMode(s string) (AdjustmentMode, error) {
	switch m := AdjustmentMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAdd, ModeSubtract, ModeSet:
		return m, nil
	}
	return "", domain.ErrUnknownAdjustMode
}

// Adjustment es una corrección manual antes de aplicarse.
type Adjustment struct {
	Mode     AdjustmentMode
	Quantity decimal.Decimal // cantidad introducida (para set, el stock objetivo)
	Reason   string
}

// Validate aplica las reglas de rechazo contra el stock reconciliado actual.
func (a Adjustment) Validate(current decimal.Decimal) error {
	if strings.TrimSpace(a.Reason) == "" {
		return domain.ErrReasonRequired
	}
	switch a.Mode {
	case ModeSet:
		if a.Quantity.IsNegative() {
			return domain.ErrNegativeTarget
		}
	case ModeAdd:
		if a.Quantity.IsNegative() {
			return domain.ErrNegativeQuantity
		}
	case ModeSubtract:
		if a.Quantity.IsNegative() {
			return domain.ErrNegativeQuantity
		}
		if a.Quantity.GreaterThan(current) {
			return domain.ErrSubtractExceeds
		}
	default:
		return domain.ErrUnknownAdjustMode
	}
	return nil
}

// Apply devuelve el nuevo stock y el delta a registrar (siempre newStock − current, nunca la cantidad introducida).
// subtract nunca baja de cero.
func (a Adjustment) Apply(current decimal.Decimal) (newStock, delta decimal.Decimal) {
	switch a.Mode {
	case ModeAdd:
		newStock = current.Add(a.Quantity)
	case ModeSubtract:
		newStock = decimal.Max(decimal.Zero, current.Sub(a.Quantity))
	case ModeSet:
		newStock = a.Quantity
	default:
		newStock = current
	}
	return newStock, newStock.Sub(current)
}
