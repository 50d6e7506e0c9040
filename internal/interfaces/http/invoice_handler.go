package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturati-api/internal/application/billing"
	"github.com/jhoicas/facturati-api/internal/application/dto"
	"github.com/jhoicas/facturati-api/pkg/logger"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc    *billing.CreateInvoiceUseCase
	pdfUC *billing.PDFUseCase
	log   *logger.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.CreateInvoiceUseCase, pdfUC *billing.PDFUseCase, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdfUC: pdfUC, log: log}
}

// Create godoc
// @Summary      Crear factura
// @Description  Guarda la factura y registra una salida de stock por cada línea vinculada a un producto.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "client_name, items"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateInvoiceRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	invoice, err := h.uc.CreateInvoice(c.UserContext(), companyID, GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// GetByID godoc
// @Summary      Obtener factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	invoice, err := h.uc.GetInvoice(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(invoice)
}

// DownloadPDF godoc
// @Summary      Descargar PDF de la factura
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    file
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	data, filename, err := h.pdfUC.DownloadInvoicePDF(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(data)
}
