package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentRequest body para POST /api/inventory/adjustments.
// El motivo se valida en el caso de uso (regla de dominio), no aquí.
type AdjustmentRequest struct {
	ProductID          string          `json:"product_id" validate:"required"`
	Mode               string          `json:"mode" validate:"required,oneof=add subtract set"`
	Quantity           decimal.Decimal `json:"quantity"`
	Reason             string          `json:"reason" validate:"max=500"`
	Reference          string          `json:"reference" validate:"max=100"`
	AdjustmentDateTime *time.Time      `json:"adjustment_date_time,omitempty"`
}

// MovementResponse una entrada del libro de movimientos.
type MovementResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Type               string          `json:"type"`
	TypeLabel          string          `json:"type_label"`
	Quantity           decimal.Decimal `json:"quantity"`
	PreviousStock      decimal.Decimal `json:"previous_stock"`
	NewStock           decimal.Decimal `json:"new_stock"`
	Reason             string          `json:"reason,omitempty"`
	Reference          string          `json:"reference,omitempty"`
	UserID             string          `json:"user_id,omitempty"`
	UserName           string          `json:"user_name,omitempty"`
	Date               time.Time       `json:"date"`
	AdjustmentDateTime *time.Time      `json:"adjustment_date_time,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// StockLevelResponse stock reconciliado de un producto.
// Drift = Stock − OnHand; distinto de cero indica que el valor materializado se desvió.
type StockLevelResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	OnHand      decimal.Decimal `json:"on_hand"`
	OnHandLabel string          `json:"on_hand_label"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Status      string          `json:"status"`
	StatusLabel string          `json:"status_label"`
	Stock       decimal.Decimal `json:"stock"`
	Drift       decimal.Decimal `json:"drift"`
}

// StockOverviewResponse resumen de stock de la empresa.
type StockOverviewResponse struct {
	TotalProducts int                  `json:"total_products"`
	OutOfStock    int                  `json:"out_of_stock"`
	LowStock      int                  `json:"low_stock"`
	Items         []StockLevelResponse `json:"items"`
}

// StockAlertDTO producto en rupture o stock faible.
type StockAlertDTO struct {
	StockLevelResponse
	Deficit  decimal.Decimal `json:"deficit"`  // MinStock − OnHand
	Priority int             `json:"priority"` // 1 = más urgente
}
