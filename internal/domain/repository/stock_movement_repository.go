package repository

import (
	"context"
	"time"

	"github.com/jhoicas/facturati-api/internal/domain/entity"
)

// StockMovementRepository puerto del libro de movimientos. Solo inserción: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// ListByProduct devuelve los movimientos del producto, más recientes primero. from/to filtran por Date.
	ListByProduct(ctx context.Context, productID string, from, to *time.Time) ([]*entity.StockMovement, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.StockMovement, error)
}
