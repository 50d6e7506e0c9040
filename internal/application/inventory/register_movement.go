package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/inventory"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
	"github.com/jhoicas/facturati-api/pkg/logger"
)

// RegisterMovementUseCase es el único escritor del libro de movimientos y del stock materializado.
// Cada escritura (ajuste, venta, stock inicial) bloquea la fila del producto, reconcilia, inserta el
// movimiento y actualiza products.stock en la misma transacción.
type RegisterMovementUseCase struct {
	txRunner TxRunner
	locker   ProductLocker
	log      *logger.Logger
	now      func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso. locker puede ser NoLock{}.
func NewRegisterMovementUseCase(txRunner TxRunner, locker ProductLocker, log *logger.Logger) *RegisterMovementUseCase {
	if locker == nil {
		locker = NoLock{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RegisterMovementUseCase{
		txRunner: txRunner,
		locker:   locker,
		log:      log.Component("inventory"),
		now:      time.Now,
	}
}

// AdjustmentInput entrada para registrar un ajuste manual.
type AdjustmentInput struct {
	CompanyID   string
	ProductID   string
	Actor       entity.Actor
	Mode        string
	Quantity    decimal.Decimal
	Reason      string
	Reference   string
	EffectiveAt *time.Time // fecha/hora elegida por el usuario; vacío = ahora
}

// RecordAdjustment valida y registra un ajuste (add, subtract o set).
// Si la validación falla no se escribe nada. El delta registrado es newStock − stock actual.
func (uc *RegisterMovementUseCase) RecordAdjustment(ctx context.Context, in AdjustmentInput) (*entity.StockMovement, error) {
	if in.ProductID == "" || in.CompanyID == "" {
		return nil, domain.ErrInvalidInput
	}
	mode, err := inventory.ParseAdjustmentMode(in.Mode)
	if err != nil {
		return nil, err
	}
	adj := inventory.Adjustment{Mode: mode, Quantity: in.Quantity, Reason: strings.TrimSpace(in.Reason)}
	// motivo vacío se rechaza antes de tocar Redis o la BD
	if adj.Reason == "" {
		return nil, domain.ErrReasonRequired
	}

	unlock, err := uc.locker.Lock(ctx, "stock-adjustment:"+in.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var mov *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if product.CompanyID != in.CompanyID {
			return domain.ErrForbidden
		}

		current, err := reconcileInTx(ctx, movRepo, invoiceRepo, product, "")
		if err != nil {
			return err
		}
		if err := adj.Validate(current); err != nil {
			return err
		}
		newStock, delta := adj.Apply(current)

		now := uc.now()
		effective := now
		if in.EffectiveAt != nil && !in.EffectiveAt.IsZero() {
			effective = *in.EffectiveAt
		}
		mov = &entity.StockMovement{
			ID:                 uuid.New().String(),
			CompanyID:          product.CompanyID,
			ProductID:          product.ID,
			ProductName:        product.Name,
			Type:               entity.MovementTypeAdjustment,
			Quantity:           delta,
			PreviousStock:      current,
			NewStock:           newStock,
			Reason:             adj.Reason,
			Reference:          strings.TrimSpace(in.Reference),
			UserID:             in.Actor.UserID,
			UserName:           in.Actor.UserName,
			Date:               effective,
			AdjustmentDateTime: &effective,
			CreatedAt:          now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		return productRepo.UpdateStock(ctx, product.ID, newStock)
	})
	if err != nil {
		if !isExpected(err) {
			uc.log.Error().Err(err).
				Str("company_id", in.CompanyID).
				Str("product_id", in.ProductID).
				Str("mode", string(mode)).
				Msg("ajuste de stock no registrado")
		}
		return nil, err
	}

	uc.log.Info().
		Str("product_id", mov.ProductID).
		Str("mode", string(mode)).
		Str("previous", mov.PreviousStock.String()).
		Str("new", mov.NewStock.String()).
		Str("user_id", mov.UserID).
		Msg("ajuste de stock registrado")
	return mov, nil
}

// RecordSalesInTx genera un movimiento sale por cada línea con producto resuelto, usando los repositorios
// de la transacción del caller (creación de factura). Las líneas sin producto no generan movimiento.
// No hay control de stock: la factura nunca se bloquea por falta de stock y el stock puede quedar negativo.
func (uc *RegisterMovementUseCase) RecordSalesInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	invoice *entity.Invoice,
	lines []*entity.InvoiceLine,
	actor entity.Actor,
) ([]*entity.StockMovement, error) {
	// bloquear en orden de ID para no producir deadlocks entre facturas concurrentes
	productIDs := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			uc.log.Warn().
				Str("invoice", invoice.Number).
				Str("description", l.Description).
				Msg("línea de factura sin producto: sin efecto en stock")
			continue
		}
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			productIDs = append(productIDs, l.ProductID)
		}
	}
	sort.Strings(productIDs)

	running := make(map[string]decimal.Decimal, len(productIDs))
	products := make(map[string]*entity.Product, len(productIDs))
	for _, id := range productIDs {
		product, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		current, err := reconcileInTx(ctx, movRepo, invoiceRepo, product, invoice.ID)
		if err != nil {
			return nil, err
		}
		products[id] = product
		running[id] = current
	}

	now := uc.now()
	movements := make([]*entity.StockMovement, 0, len(productIDs))
	for _, l := range lines {
		if l.ProductID == "" {
			continue
		}
		product := products[l.ProductID]
		previous := running[l.ProductID]
		next := previous.Sub(l.Quantity)
		running[l.ProductID] = next

		mov := &entity.StockMovement{
			ID:            uuid.New().String(),
			CompanyID:     product.CompanyID,
			ProductID:     product.ID,
			ProductName:   product.Name,
			Type:          entity.MovementTypeSale,
			Quantity:      l.Quantity.Neg(),
			PreviousStock: previous,
			NewStock:      next,
			Reference:     invoice.Number,
			UserID:        actor.UserID,
			UserName:      actor.UserName,
			Date:          invoice.Date,
			CreatedAt:     now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return nil, err
		}
		movements = append(movements, mov)
	}
	for _, id := range productIDs {
		if err := productRepo.UpdateStock(ctx, id, running[id]); err != nil {
			return nil, err
		}
	}
	return movements, nil
}

// RecordInitialInTx registra el movimiento initial de un producto recién creado.
func (uc *RegisterMovementUseCase) RecordInitialInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	product *entity.Product,
	actor entity.Actor,
) (*entity.StockMovement, error) {
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		CompanyID:     product.CompanyID,
		ProductID:     product.ID,
		ProductName:   product.Name,
		Type:          entity.MovementTypeInitial,
		Quantity:      product.InitialStock,
		PreviousStock: decimal.Zero,
		NewStock:      product.InitialStock,
		Reason:        "Stock initial",
		UserID:        actor.UserID,
		UserName:      actor.UserName,
		Date:          product.CreatedAt,
		CreatedAt:     uc.now(),
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// isExpected indica errores de negocio que no merecen log de error.
func isExpected(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrAdjustmentInProgress)
}
