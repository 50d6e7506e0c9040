package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice representa la cabecera de una factura de venta.
type Invoice struct {
	ID         string
	CompanyID  string
	Number     string
	ClientName string
	Date       time.Time
	NetTotal   decimal.Decimal // total HT
	TaxTotal   decimal.Decimal // TVA
	GrandTotal decimal.Decimal // total TTC
	CreatedBy  string
	CreatedAt  time.Time
}

// TVARates tipos de TVA vigentes en Marruecos (en %).
var TVARates = []int64{0, 7, 10, 14, 20}

// DefaultTVARate tipo normal.
const DefaultTVARate = 20

// IsValidTaxRate indica si rate (en %) es uno de los tipos de TVA vigentes.
func IsValidTaxRate(rate decimal.Decimal) bool {
	for _, r := range TVARates {
		if rate.Equal(decimal.NewFromInt(r)) {
			return true
		}
	}
	return false
}
