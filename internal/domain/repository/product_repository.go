package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get* devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	// FindByCompanyAndName devuelve el primer producto (más antiguo) cuyo nombre es exactamente name.
	FindByCompanyAndName(ctx context.Context, companyID, name string) (*entity.Product, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
	CountByCompany(ctx context.Context, companyID string) (int, error)
	// Update modifica los datos de catálogo; nunca InitialStock ni Stock.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock escribe el stock materializado. Solo lo llama el motor de movimientos dentro de su transacción.
	UpdateStock(ctx context.Context, productID string, stock decimal.Decimal) error
}
