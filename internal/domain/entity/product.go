package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo de una empresa.
// InitialStock se fija al crear el producto. Stock es un valor materializado que solo escribe el
// motor de movimientos (ajustes y ventas) dentro de la misma transacción que el movimiento;
// la fuente de verdad sigue siendo la reconciliación (ver domain/inventory).
type Product struct {
	ID           string
	CompanyID    string
	SKU          string // código único por empresa
	Name         string
	Description  string
	Unit         string          // kg, t, pièce, litre...; solo afecta al formato
	Price        decimal.Decimal // prix de vente HT
	TaxRate      decimal.Decimal // TVA Maroc: 0, 7, 10, 14, 20
	InitialStock decimal.Decimal
	Stock        decimal.Decimal
	MinStock     decimal.Decimal // seuil d'alerte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
