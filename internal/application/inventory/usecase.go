package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/application/dto"
	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/inventory"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
)

// UseCase consultas de stock: valor reconciliado, resumen, alertas e historial.
// Todas las decisiones (estado, alertas) usan el stock reconciliado, nunca products.stock.
type UseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	invoiceRepo repository.InvoiceRepository
	now         func() time.Time
}

// NewUseCase construye el caso de uso de consultas.
func NewUseCase(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	invoiceRepo repository.InvoiceRepository,
) *UseCase {
	return &UseCase{
		productRepo: productRepo,
		movRepo:     movRepo,
		invoiceRepo: invoiceRepo,
		now:         time.Now,
	}
}

// GetCurrentStock devuelve el stock reconciliado del producto.
func (uc *UseCase) GetCurrentStock(ctx context.Context, companyID, productID string) (*dto.StockLevelResponse, error) {
	product, err := uc.companyProduct(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	onHand, err := reconcileInTx(ctx, uc.movRepo, uc.invoiceRepo, product, "")
	if err != nil {
		return nil, err
	}
	level := toStockLevel(product, onHand)
	return &level, nil
}

// StockOverview calcula el stock de todos los productos de la empresa con una sola carga del historial.
func (uc *UseCase) StockOverview(ctx context.Context, companyID string) (*dto.StockOverviewResponse, error) {
	levels, err := uc.companyLevels(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := &dto.StockOverviewResponse{
		TotalProducts: len(levels),
		Items:         levels,
	}
	for _, l := range levels {
		switch inventory.StockLevel(l.Status) {
		case inventory.StockLevelOut:
			out.OutOfStock++
		case inventory.StockLevelLow:
			out.LowStock++
		}
	}
	return out, nil
}

// StockAlerts devuelve los productos en rupture o stock faible.
// Orden: primero rupture, luego mayor déficit (MinStock − OnHand), luego nombre.
func (uc *UseCase) StockAlerts(ctx context.Context, companyID string) ([]dto.StockAlertDTO, error) {
	levels, err := uc.companyLevels(ctx, companyID)
	if err != nil {
		return nil, err
	}
	alerts := make([]dto.StockAlertDTO, 0)
	for _, l := range levels {
		if inventory.StockLevel(l.Status) == inventory.StockLevelOK {
			continue
		}
		alerts = append(alerts, dto.StockAlertDTO{
			StockLevelResponse: l,
			Deficit:            l.MinStock.Sub(l.OnHand),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		outA := a.Status == string(inventory.StockLevelOut)
		outB := b.Status == string(inventory.StockLevelOut)
		if outA != outB {
			return outA
		}
		if !a.Deficit.Equal(b.Deficit) {
			return a.Deficit.GreaterThan(b.Deficit)
		}
		return a.ProductName < b.ProductName
	})

	// 1 = más urgente
	for i := range alerts {
		alerts[i].Priority = i + 1
	}
	return alerts, nil
}

// History devuelve los movimientos del producto, más recientes primero.
func (uc *UseCase) History(ctx context.Context, companyID, productID string) ([]dto.MovementResponse, error) {
	product, err := uc.companyProduct(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	movements, err := uc.movRepo.ListByProduct(ctx, product.ID, nil, nil)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

func (uc *UseCase) companyProduct(ctx context.Context, companyID, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

// companyLevels reconcilia todos los productos de la empresa en memoria.
func (uc *UseCase) companyLevels(ctx context.Context, companyID string) ([]dto.StockLevelResponse, error) {
	total, err := uc.productRepo.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return []dto.StockLevelResponse{}, nil
	}
	products, err := uc.productRepo.ListByCompany(ctx, companyID, total, 0)
	if err != nil {
		return nil, err
	}
	movements, err := uc.movRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	lines, err := uc.invoiceRepo.ListLinesByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	levels := make([]dto.StockLevelResponse, 0, len(products))
	for _, p := range products {
		onHand := inventory.CalculateCurrentStock(p.ID, products, movements, lines)
		levels = append(levels, toStockLevel(p, onHand))
	}
	return levels, nil
}

func toStockLevel(p *entity.Product, onHand decimal.Decimal) dto.StockLevelResponse {
	status := inventory.ClassifyStock(onHand, p.MinStock)
	return dto.StockLevelResponse{
		ProductID:   p.ID,
		ProductName: p.Name,
		Unit:        p.Unit,
		OnHand:      onHand,
		OnHandLabel: inventory.FormatQuantity(onHand, p.Unit),
		MinStock:    p.MinStock,
		Status:      string(status),
		StatusLabel: status.Label(),
		Stock:       p.Stock,
		Drift:       p.Stock.Sub(onHand),
	}
}

// ToMovementResponse convierte un movimiento a su DTO.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                 m.ID,
		ProductID:          m.ProductID,
		ProductName:        m.ProductName,
		Type:               m.Type,
		TypeLabel:          inventory.MovementTypeLabel(m.Type),
		Quantity:           m.Quantity,
		PreviousStock:      m.PreviousStock,
		NewStock:           m.NewStock,
		Reason:             m.Reason,
		Reference:          m.Reference,
		UserID:             m.UserID,
		UserName:           m.UserName,
		Date:               m.Date,
		AdjustmentDateTime: m.AdjustmentDateTime,
		CreatedAt:          m.CreatedAt,
	}
}
