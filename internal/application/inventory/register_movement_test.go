package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
	"github.com/jhoicas/facturati-api/internal/infrastructure/memory"
)

const testCompany = "11111111-1111-1111-1111-111111111111"

var testActor = entity.Actor{UserID: "u-1", UserName: "Amina"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seedProduct crea un producto con su movimiento initial, como lo hace el catálogo.
func seedProduct(t *testing.T, store *memory.Store, id, name, initial string) *entity.Product {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{
		ID:           id,
		CompanyID:    testCompany,
		SKU:          "SKU-" + id,
		Name:         name,
		Unit:         "piece",
		InitialStock: dec(initial),
		Stock:        dec(initial),
		MinStock:     dec("5"),
		CreatedAt:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
	uc := NewRegisterMovementUseCase(store, nil, nil)
	require.NoError(t, store.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository, _ repository.InvoiceRepository) error {
		if err := productRepo.Create(ctx, p); err != nil {
			return err
		}
		_, err := uc.RecordInitialInTx(ctx, movRepo, p, testActor)
		return err
	}))
	return p
}

// addInvoice inserta una factura con sus líneas sin pasar por la generación de ventas.
func addInvoice(t *testing.T, store *memory.Store, id string, lines ...*entity.InvoiceLine) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Invoices().Create(ctx, &entity.Invoice{ID: id, CompanyID: testCompany, Number: "FA-" + id, Date: time.Now()}))
	for i, l := range lines {
		l.ID = id + "-" + string(rune('a'+i))
		l.InvoiceID = id
		require.NoError(t, store.Invoices().CreateLine(ctx, l))
	}
}

func TestRecordAdjustment_EscenarioCompleto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Ciment 35kg", "100")
	addInvoice(t, store, "inv-1", &entity.InvoiceLine{ProductID: p.ID, Quantity: dec("30")})

	uc := NewRegisterMovementUseCase(store, NoLock{}, nil)
	mov, err := uc.RecordAdjustment(ctx, AdjustmentInput{
		CompanyID: testCompany, ProductID: p.ID, Actor: testActor,
		Mode: "add", Quantity: dec("10"), Reason: "Réception fournisseur",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementTypeAdjustment, mov.Type)
	assert.True(t, mov.Quantity.Equal(dec("10")))
	assert.True(t, mov.PreviousStock.Equal(dec("70")))
	assert.True(t, mov.NewStock.Equal(dec("80")))
	assert.Equal(t, "Amina", mov.UserName)
	require.NotNil(t, mov.AdjustmentDateTime)

	stored, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Stock.Equal(dec("80")), "stock materializado = %s", stored.Stock)
}

func TestRecordAdjustment_IgnoraStockMaterializado(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Sable", "100")
	addInvoice(t, store, "inv-1", &entity.InvoiceLine{ProductID: p.ID, Quantity: dec("30")})
	// valor materializado desviado
	require.NoError(t, store.Products().UpdateStock(ctx, p.ID, dec("999")))

	uc := NewRegisterMovementUseCase(store, nil, nil)
	mov, err := uc.RecordAdjustment(ctx, AdjustmentInput{
		CompanyID: testCompany, ProductID: p.ID, Actor: testActor,
		Mode: "add", Quantity: dec("10"), Reason: "Inventaire",
	})
	require.NoError(t, err)
	assert.True(t, mov.NewStock.Equal(dec("80")))
}

func TestRecordAdjustment_SetIdaYVuelta(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Gravette", "12")

	uc := NewRegisterMovementUseCase(store, nil, nil)
	mov, err := uc.RecordAdjustment(ctx, AdjustmentInput{
		CompanyID: testCompany, ProductID: p.ID, Actor: testActor,
		Mode: "set", Quantity: dec("42"), Reason: "Inventaire annuel",
	})
	require.NoError(t, err)
	assert.True(t, mov.Quantity.Equal(dec("30")))

	q := NewUseCase(store.Products(), store.Movements(), store.Invoices())
	level, err := q.GetCurrentStock(ctx, testCompany, p.ID)
	require.NoError(t, err)
	assert.True(t, level.OnHand.Equal(dec("42")))
	assert.True(t, level.Drift.IsZero())
}

func TestRecordAdjustment_MotivoVacioNoEscribe(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Fer 8mm", "20")

	uc := NewRegisterMovementUseCase(store, nil, nil)
	_, err := uc.RecordAdjustment(ctx, AdjustmentInput{
		CompanyID: testCompany, ProductID: p.ID, Actor: testActor,
		Mode: "add", Quantity: dec("5"), Reason: "   ",
	})
	require.ErrorIs(t, err, domain.ErrReasonRequired)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	movs, err := store.Movements().ListByProduct(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, movs, 1) // solo el initial
	stored, _ := store.Products().GetByID(ctx, p.ID)
	assert.True(t, stored.Stock.Equal(dec("20")))
}

func TestRecordAdjustment_Rechazos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Brique", "10")
	uc := NewRegisterMovementUseCase(store, nil, nil)

	cases := []struct {
		name string
		mode string
		qty  string
		want error
	}{
		{"retirar más que el stock", "subtract", "11", domain.ErrSubtractExceeds},
		{"objetivo negativo", "set", "-1", domain.ErrNegativeTarget},
		{"cantidad negativa", "add", "-3", domain.ErrNegativeQuantity},
		{"modo desconocido", "transfer", "1", domain.ErrUnknownAdjustMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RecordAdjustment(ctx, AdjustmentInput{
				CompanyID: testCompany, ProductID: p.ID, Actor: testActor,
				Mode: tc.mode, Quantity: dec(tc.qty), Reason: "Contrôle",
			})
			assert.ErrorIs(t, err, tc.want)
		})
	}
	movs, _ := store.Movements().ListByProduct(ctx, p.ID, nil, nil)
	assert.Len(t, movs, 1)
}

func TestRecordAdjustment_SubtractTodoElStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Tuile", "7")
	uc := NewRegisterMovementUseCase(store, nil, nil)

	mov, err := uc.RecordAdjustment(ctx, AdjustmentInput{
		CompanyID: testCompany, ProductID: p.ID, Actor: testActor,
		Mode: "subtract", Quantity: dec("7"), Reason: "Casse",
	})
	require.NoError(t, err)
	assert.True(t, mov.NewStock.IsZero())
	assert.True(t, mov.Quantity.Equal(dec("-7")))
}

func TestRecordAdjustment_OtraEmpresa(t *testing.T) {
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Tuile", "7")
	uc := NewRegisterMovementUseCase(store, nil, nil)

	_, err := uc.RecordAdjustment(context.Background(), AdjustmentInput{
		CompanyID: "otra", ProductID: p.ID, Mode: "add", Quantity: dec("1"), Reason: "x",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.RecordAdjustment(context.Background(), AdjustmentInput{
		CompanyID: testCompany, ProductID: "no-existe", Mode: "add", Quantity: dec("1"), Reason: "x",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordAdjustment_FechaElegida(t *testing.T) {
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Tuile", "7")
	uc := NewRegisterMovementUseCase(store, nil, nil)
	at := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	mov, err := uc.RecordAdjustment(context.Background(), AdjustmentInput{
		CompanyID: testCompany, ProductID: p.ID, Mode: "add", Quantity: dec("1"), Reason: "x", EffectiveAt: &at,
	})
	require.NoError(t, err)
	assert.Equal(t, at, mov.Date)
	assert.Equal(t, at, *mov.AdjustmentDateTime)
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) {
	return nil, domain.ErrAdjustmentInProgress
}

func TestRecordAdjustment_BloqueoOcupado(t *testing.T) {
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Tuile", "7")
	uc := NewRegisterMovementUseCase(store, busyLocker{}, nil)

	_, err := uc.RecordAdjustment(context.Background(), AdjustmentInput{
		CompanyID: testCompany, ProductID: p.ID, Mode: "add", Quantity: dec("1"), Reason: "x",
	})
	assert.ErrorIs(t, err, domain.ErrAdjustmentInProgress)
}

// failingTx inyecta un repositorio de movimientos que falla al insertar.
type failingTx struct{ store *memory.Store }

type failingMovements struct{ repository.StockMovementRepository }

func (failingMovements) Create(context.Context, *entity.StockMovement) error {
	return errors.New("disk full")
}

func (f failingTx) Run(ctx context.Context, fn func(repository.StockMovementRepository, repository.ProductRepository, repository.InvoiceRepository) error) error {
	return f.store.Run(ctx, func(m repository.StockMovementRepository, p repository.ProductRepository, i repository.InvoiceRepository) error {
		return fn(failingMovements{m}, p, i)
	})
}

func TestRecordAdjustment_FalloDeEscrituraHaceRollback(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Tuile", "7")
	uc := NewRegisterMovementUseCase(failingTx{store}, nil, nil)

	_, err := uc.RecordAdjustment(ctx, AdjustmentInput{
		CompanyID: testCompany, ProductID: p.ID, Mode: "set", Quantity: dec("3"), Reason: "x",
	})
	require.Error(t, err)

	stored, _ := store.Products().GetByID(ctx, p.ID)
	assert.True(t, stored.Stock.Equal(dec("7")))
}

func TestRecordSalesInTx_EncadenaPorProducto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Ciment", "10")
	uc := NewRegisterMovementUseCase(store, nil, nil)

	inv := &entity.Invoice{ID: "inv-1", CompanyID: testCompany, Number: "FA-1", Date: time.Now()}
	lines := []*entity.InvoiceLine{
		{ID: "l1", InvoiceID: inv.ID, ProductID: p.ID, Description: "Ciment", Quantity: dec("4")},
		{ID: "l2", InvoiceID: inv.ID, Description: "Transport", Quantity: dec("1")},
		{ID: "l3", InvoiceID: inv.ID, ProductID: p.ID, Description: "Ciment", Quantity: dec("8")},
	}

	var movs []*entity.StockMovement
	err := store.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository, invoiceRepo repository.InvoiceRepository) error {
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		for _, l := range lines {
			if err := invoiceRepo.CreateLine(ctx, l); err != nil {
				return err
			}
		}
		var err error
		movs, err = uc.RecordSalesInTx(ctx, movRepo, productRepo, invoiceRepo, inv, lines, testActor)
		return err
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	assert.True(t, movs[0].PreviousStock.Equal(dec("10")))
	assert.True(t, movs[0].NewStock.Equal(dec("6")))
	assert.True(t, movs[1].PreviousStock.Equal(dec("6")))
	assert.True(t, movs[1].NewStock.Equal(dec("-2")), "el stock puede quedar negativo")
	assert.Equal(t, "FA-1", movs[1].Reference)
	assert.True(t, movs[1].Quantity.Equal(dec("-8")))

	stored, _ := store.Products().GetByID(ctx, p.ID)
	assert.True(t, stored.Stock.Equal(dec("-2")))
}

func TestRecordSalesInTx_LineaSinProducto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Ciment", "10")
	uc := NewRegisterMovementUseCase(store, nil, nil)

	inv := &entity.Invoice{ID: "inv-1", CompanyID: testCompany, Number: "FA-1", Date: time.Now()}
	lines := []*entity.InvoiceLine{{ID: "l1", InvoiceID: inv.ID, Description: "Ciment gris", Quantity: dec("4")}}

	var movs []*entity.StockMovement
	err := store.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository, invoiceRepo repository.InvoiceRepository) error {
		var err error
		movs, err = uc.RecordSalesInTx(ctx, movRepo, productRepo, invoiceRepo, inv, lines, testActor)
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, movs)

	stored, _ := store.Products().GetByID(ctx, p.ID)
	assert.True(t, stored.Stock.Equal(dec("10")))
}
