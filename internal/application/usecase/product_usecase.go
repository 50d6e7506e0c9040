package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/application/dto"
	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/inventory"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
)

// ProductTxRunner transacción con los repositorios del libro de stock.
type ProductTxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// InitialStockRecorder escribe el movimiento initial dentro de la transacción de creación.
type InitialStockRecorder interface {
	RecordInitialInTx(ctx context.Context, movRepo repository.StockMovementRepository, product *entity.Product, actor entity.Actor) (*entity.StockMovement, error)
}

// ProductUseCase casos de uso CRUD para productos. InitialStock se fija al crear; Stock se maneja vía movimientos.
type ProductUseCase struct {
	txRunner    ProductTxRunner
	initial     InitialStockRecorder
	repo        repository.ProductRepository
	movRepo     repository.StockMovementRepository
	invoiceRepo repository.InvoiceRepository
	defaultUnit string
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner ProductTxRunner,
	initial InitialStockRecorder,
	repo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	invoiceRepo repository.InvoiceRepository,
	defaultUnit string,
) *ProductUseCase {
	if defaultUnit == "" {
		defaultUnit = "piece"
	}
	return &ProductUseCase{
		txRunner:    txRunner,
		initial:     initial,
		repo:        repo,
		movRepo:     movRepo,
		invoiceRepo: invoiceRepo,
		defaultUnit: defaultUnit,
	}
}

// Create crea un producto con stock = InitialStock y su movimiento initial, en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, actor entity.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if companyID == "" || sku == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByCompanyAndSKU(ctx, companyID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if !entity.IsValidTaxRate(in.TaxRate) {
		return nil, domain.ErrInvalidTaxRate
	}
	if in.InitialStock.IsNegative() {
		return nil, domain.ErrNegativeInitial
	}
	if in.Price.IsNegative() || in.MinStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = uc.defaultUnit
	}

	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		SKU:          sku,
		Name:         name,
		Description:  in.Description,
		Unit:         unit,
		Price:        in.Price,
		TaxRate:      in.TaxRate,
		InitialStock: in.InitialStock,
		Stock:        in.InitialStock,
		MinStock:     in.MinStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		_ repository.InvoiceRepository,
	) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		_, err := uc.initial.RecordInitialInTx(ctx, movRepo, product, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, product.InitialStock), nil
}

// GetByID obtiene un producto de la empresa con su stock reconciliado.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.companyProduct(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	movements, err := uc.movRepo.ListByProduct(ctx, product.ID, nil, nil)
	if err != nil {
		return nil, err
	}
	lines, err := uc.invoiceRepo.ListLinesByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, inventory.CurrentStock(product, movements, lines)), nil
}

// Update actualiza datos de catálogo. No permite modificar InitialStock ni Stock (se manejan vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.companyProduct(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Unit != nil {
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.TaxRate != nil {
		if !entity.IsValidTaxRate(*in.TaxRate) {
			return nil, domain.ErrInvalidTaxRate
		}
		product.TaxRate = *in.TaxRate
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.MinStock = *in.MinStock
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, companyID, id)
}

// List lista productos por empresa con paginación; cada item lleva su stock reconciliado.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	if len(list) > 0 {
		movements, err := uc.movRepo.ListByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		lines, err := uc.invoiceRepo.ListLinesByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			items = append(items, *toProductResponse(p, inventory.CurrentStock(p, movements, lines)))
		}
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

func (uc *ProductUseCase) companyProduct(ctx context.Context, companyID, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
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

func toProductResponse(p *entity.Product, onHand decimal.Decimal) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Unit:         p.Unit,
		Price:        p.Price,
		TaxRate:      p.TaxRate,
		InitialStock: p.InitialStock,
		Stock:        p.Stock,
		MinStock:     p.MinStock,
		OnHand:       onHand,
		OnHandLabel:  inventory.FormatQuantity(onHand, p.Unit),
		Status:       string(inventory.ClassifyStock(onHand, p.MinStock)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
