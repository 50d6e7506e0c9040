package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturati-api/internal/application/auth"
	"github.com/jhoicas/facturati-api/internal/application/billing"
	"github.com/jhoicas/facturati-api/internal/application/inventory"
	"github.com/jhoicas/facturati-api/internal/application/usecase"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	UserUC           *usecase.UserUseCase
	ProductUC        *usecase.ProductUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Inventory        *inventory.UseCase
	CreateInvoice    *billing.CreateInvoiceUseCase
	InvoicePDF       *billing.PDFUseCase
	JWTSecret        string
	Log              *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, log)
	products.Post("/", RequireRole(entity.RoleAdmin, entity.RoleMagasinier), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", RequireRole(entity.RoleAdmin, entity.RoleMagasinier), productHandler.Update)

	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Inventory, log)
	inv.Get("/overview", inventoryHandler.Overview)
	inv.Get("/alerts", inventoryHandler.Alerts)
	inv.Get("/products/:id/stock", inventoryHandler.GetStock)
	inv.Get("/products/:id/movements", inventoryHandler.History)
	inv.Get("/products/:id/movements/export", inventoryHandler.ExportHistory)
	inv.Post("/adjustments", RequireRole(entity.RoleAdmin, entity.RoleMagasinier), inventoryHandler.RecordAdjustment)

	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.CreateInvoice, deps.InvoicePDF, log)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
}
