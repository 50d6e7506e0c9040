package inventory

import (
	"context"

	"github.com/jhoicas/facturati-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// El movimiento y el stock materializado del producto se escriben siempre en la misma transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// ProductLocker serializa los envíos de ajustes sobre un mismo producto entre instancias.
// Lock devuelve domain.ErrAdjustmentInProgress si otro envío tiene el bloqueo.
type ProductLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// NoLock es el ProductLocker usado cuando no hay Redis: el bloqueo de fila en PostgreSQL basta en una sola instancia.
type NoLock struct{}

// Lock no bloquea nada.
func (NoLock) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
