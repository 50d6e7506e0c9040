package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturati-api/internal/application/dto"
	"github.com/jhoicas/facturati-api/internal/application/inventory"
	"github.com/jhoicas/facturati-api/pkg/logger"
)

// InventoryHandler maneja stock, historial y ajustes (protegido).
type InventoryHandler struct {
	movements *inventory.RegisterMovementUseCase
	queries   *inventory.UseCase
	log       *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.RegisterMovementUseCase, queries *inventory.UseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{movements: movements, queries: queries, log: log}
}

// RecordAdjustment godoc
// @Summary      Registrar ajuste de stock
// @Description  mode: add (entrada), subtract (salida), set (inventario físico). El motivo es obligatorio.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "product_id, mode, quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RecordAdjustment(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustmentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	mov, err := h.movements.RecordAdjustment(c.UserContext(), inventory.AdjustmentInput{
		CompanyID:   companyID,
		ProductID:   in.ProductID,
		Actor:       GetActor(c),
		Mode:        in.Mode,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		Reference:   in.Reference,
		EffectiveAt: in.AdjustmentDateTime,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToMovementResponse(mov))
}

// GetStock godoc
// @Summary      Stock actual de un producto
// @Description  Reconciliado desde el stock inicial, los ajustes y las líneas de factura.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.queries.GetCurrentStock(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.queries.History(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// ExportHistory godoc
// @Summary      Exportar historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id      path   string  true   "ID del producto"
// @Param        format  query  string  false  "csv | xlsx"  default(csv)
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements/export [get]
func (h *InventoryHandler) ExportHistory(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	file, err := h.queries.ExportHistory(c.UserContext(), companyID, c.Params("id"), c.Query("format"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	return c.Send(file.Data)
}

// Overview godoc
// @Summary      Resumen de stock de la empresa
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockOverviewResponse
// @Router       /api/inventory/overview [get]
func (h *InventoryHandler) Overview(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.queries.StockOverview(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Alerts godoc
// @Summary      Productos en rupture o stock faible
// @Description  Ordenados por urgencia: primero rupture, luego mayor déficit.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockAlertDTO
// @Router       /api/inventory/alerts [get]
func (h *InventoryHandler) Alerts(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.queries.StockAlerts(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}
