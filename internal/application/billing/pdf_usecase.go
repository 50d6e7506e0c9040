package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturati-api/internal/domain/inventory"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
)

// PDFUseCase genera el PDF de una factura.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	generator   InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		generator:   generator,
	}
}

// DownloadInvoicePDF recupera la factura y sus líneas y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
//   - domain.ErrForbidden        si la factura no pertenece a la empresa del token.
func (uc *PDFUseCase) DownloadInvoicePDF(
	ctx context.Context,
	companyID, invoiceID string,
) (pdfBytes []byte, filename string, err error) {
	inv, err := loadInvoice(ctx, uc.invoiceRepo, companyID, invoiceID)
	if err != nil {
		return nil, "", err
	}

	rawLines, err := uc.invoiceRepo.GetLinesByInvoiceID(ctx, inv.ID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener líneas: %w", err)
	}

	enriched := make([]InvoiceLineForPDF, 0, len(rawLines))
	for _, l := range rawLines {
		item := InvoiceLineForPDF{InvoiceLine: *l, ProductName: l.Description}
		if l.ProductID != "" {
			if product, pErr := uc.productRepo.GetByID(ctx, l.ProductID); pErr == nil && product != nil {
				item.ProductName = product.Name
				item.Unit = product.Unit
			}
		}
		enriched = append(enriched, item)
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, enriched)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("facture_%s.pdf", inventory.SafeFileComponent(inv.Number))
	return pdfBytes, filename, nil
}
