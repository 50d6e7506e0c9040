package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/facturati-api/internal/application/auth"
	"github.com/jhoicas/facturati-api/internal/application/billing"
	"github.com/jhoicas/facturati-api/internal/application/inventory"
	"github.com/jhoicas/facturati-api/internal/application/usecase"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
	"github.com/jhoicas/facturati-api/internal/infrastructure/lock"
	"github.com/jhoicas/facturati-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/facturati-api/internal/infrastructure/pdf"
	"github.com/jhoicas/facturati-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/facturati-api/internal/interfaces/http"
	"github.com/jhoicas/facturati-api/pkg/config"
	"github.com/jhoicas/facturati-api/pkg/logger"
)

// storage agrupa los puertos de persistencia del backend elegido.
type storage struct {
	tx        inventory.TxRunner
	users     repository.UserRepository
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	invoices  repository.InvoiceRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer store.close()

	// Bloqueo de ajustes entre instancias; sin Redis basta la transacción.
	var locker inventory.ProductLocker = inventory.NoLock{}
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Inventory.AdjustmentLockTTL, log)
	}

	registerMovementUC := inventory.NewRegisterMovementUseCase(store.tx, locker, log)
	inventoryUC := inventory.NewUseCase(store.products, store.movements, store.invoices)
	productUC := usecase.NewProductUseCase(
		store.tx, registerMovementUC,
		store.products, store.movements, store.invoices,
		cfg.Inventory.DefaultUnit,
	)
	createInvoiceUC := billing.NewCreateInvoiceUseCase(
		store.tx, registerMovementUC, store.products, store.invoices, log,
	)
	invoicePDFUC := billing.NewPDFUseCase(
		store.invoices, store.products, infrapdf.NewMarotoPDFGenerator(cfg.Issuer),
	)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(store.users)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturati API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		UserUC:           userUC,
		ProductUC:        productUC,
		RegisterMovement: registerMovementUC,
		Inventory:        inventoryUC,
		CreateInvoice:    createInvoiceUC,
		InvoicePDF:       invoicePDFUC,
		JWTSecret:        cfg.JWT.Secret,
		Log:              log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.App.Storage == "memory" {
		s := memory.NewStore()
		return &storage{
			tx:        s,
			users:     s.Users(),
			products:  s.Products(),
			movements: s.Movements(),
			invoices:  s.Invoices(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		tx:        postgres.NewTxRunner(pool),
		users:     postgres.NewUserRepository(pool),
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		invoices:  postgres.NewInvoiceRepository(pool),
		close:     pool.Close,
	}, nil
}
