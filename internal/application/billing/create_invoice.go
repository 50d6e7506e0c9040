package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/application/dto"
	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
	"github.com/jhoicas/facturati-api/pkg/logger"
)

var hundred = decimal.NewFromInt(100)

// CreateInvoiceUseCase crea una factura y sus movimientos de venta en una sola transacción.
type CreateInvoiceUseCase struct {
	txRunner    BillingTxRunner
	sales       SalesRecorder
	productRepo repository.ProductRepository
	invoiceRepo repository.InvoiceRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewCreateInvoiceUseCase construye el caso de uso.
func NewCreateInvoiceUseCase(
	txRunner BillingTxRunner,
	sales SalesRecorder,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	log *logger.Logger,
) *CreateInvoiceUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CreateInvoiceUseCase{
		txRunner:    txRunner,
		sales:       sales,
		productRepo: productRepo,
		invoiceRepo: invoiceRepo,
		log:         log.Component("billing"),
		now:         time.Now,
	}
}

// CreateInvoice valida las líneas, resuelve el producto de cada una (una sola vez), calcula totales con TVA
// y en una transacción guarda cabecera, líneas y movimientos de venta. Todo o nada.
// Resolución: product_id si viene; si no, nombre exacto igual a la descripción (el más antiguo); si no, sin producto.
func (uc *CreateInvoiceUseCase) CreateInvoice(
	ctx context.Context,
	companyID string,
	actor entity.Actor,
	in dto.CreateInvoiceRequest,
) (*dto.InvoiceResponse, error) {
	if companyID == "" || strings.TrimSpace(in.ClientName) == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	invoiceID := uuid.New().String()
	lines := make([]*entity.InvoiceLine, 0, len(in.Items))
	var netTotal, taxTotal decimal.Decimal

	// Validar y resolver productos (fuera de la tx, solo lectura)
	for i := range in.Items {
		item := in.Items[i]
		if !item.Quantity.IsPositive() || item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("ligne %d: %w", i+1, domain.ErrInvalidInvoiceLine)
		}
		product, err := uc.resolveProduct(ctx, companyID, item)
		if err != nil {
			return nil, err
		}

		description := strings.TrimSpace(item.Description)
		unitPrice := item.UnitPrice
		rate := decimal.NewFromInt(entity.DefaultTVARate)
		productID := ""
		if product != nil {
			productID = product.ID
			if description == "" {
				description = product.Name
			}
			if unitPrice.IsZero() {
				unitPrice = product.Price
			}
			rate = product.TaxRate
		}
		if item.TaxRate != nil {
			rate = *item.TaxRate
		}
		if !entity.IsValidTaxRate(rate) {
			return nil, domain.ErrInvalidTaxRate
		}
		if description == "" {
			return nil, fmt.Errorf("ligne %d: %w", i+1, domain.ErrInvalidInvoiceLine)
		}

		subtotal := item.Quantity.Mul(unitPrice).Round(2)
		netTotal = netTotal.Add(subtotal)
		taxTotal = taxTotal.Add(subtotal.Mul(rate).Div(hundred).Round(2))

		lines = append(lines, &entity.InvoiceLine{
			ID:          uuid.New().String(),
			InvoiceID:   invoiceID,
			ProductID:   productID,
			Description: description,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			TaxRate:     rate,
			Subtotal:    subtotal,
		})
	}

	number := strings.TrimSpace(in.Number)
	if number == "" {
		number = fmt.Sprintf("FA-%d", now.Unix())
	}
	date := now
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}
	inv := &entity.Invoice{
		ID:         invoiceID,
		CompanyID:  companyID,
		Number:     number,
		ClientName: strings.TrimSpace(in.ClientName),
		Date:       date,
		NetTotal:   netTotal,
		TaxTotal:   taxTotal,
		GrandTotal: netTotal.Add(taxTotal),
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
	}

	var movements []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		for _, l := range lines {
			if err := invoiceRepo.CreateLine(ctx, l); err != nil {
				return err
			}
		}
		var err error
		movements, err = uc.sales.RecordSalesInTx(ctx, movRepo, productRepo, invoiceRepo, inv, lines, actor)
		return err
	})
	if err != nil {
		uc.log.Error().Err(err).
			Str("company_id", companyID).
			Str("invoice", number).
			Msg("factura no creada")
		return nil, err
	}

	uc.log.Info().
		Str("invoice", inv.Number).
		Int("lines", len(lines)).
		Int("movements", len(movements)).
		Msg("factura creada")
	return toInvoiceResponse(inv, lines), nil
}

// GetInvoice devuelve la factura con sus líneas.
func (uc *CreateInvoiceUseCase) GetInvoice(ctx context.Context, companyID, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := loadInvoice(ctx, uc.invoiceRepo, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	lines, err := uc.invoiceRepo.GetLinesByInvoiceID(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, lines), nil
}

func (uc *CreateInvoiceUseCase) resolveProduct(ctx context.Context, companyID string, item dto.InvoiceItemRequest) (*entity.Product, error) {
	if item.ProductID != "" {
		product, err := uc.productRepo.GetByID(ctx, item.ProductID)
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
	name := strings.TrimSpace(item.Description)
	if name == "" {
		return nil, nil
	}
	return uc.productRepo.FindByCompanyAndName(ctx, companyID, name)
}

func loadInvoice(ctx context.Context, repo repository.InvoiceRepository, companyID, invoiceID string) (*entity.Invoice, error) {
	if invoiceID == "" {
		return nil, domain.ErrInvalidInput
	}
	inv, err := repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return inv, nil
}

func toInvoiceResponse(inv *entity.Invoice, lines []*entity.InvoiceLine) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:         inv.ID,
		CompanyID:  inv.CompanyID,
		Number:     inv.Number,
		ClientName: inv.ClientName,
		Date:       inv.Date.Format("2006-01-02"),
		NetTotal:   inv.NetTotal,
		TaxTotal:   inv.TaxTotal,
		GrandTotal: inv.GrandTotal,
		Lines:      make([]dto.InvoiceLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			Subtotal:    l.Subtotal,
		})
	}
	return resp
}
