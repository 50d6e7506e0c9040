package billing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturati-api/internal/application/dto"
	appinventory "github.com/jhoicas/facturati-api/internal/application/inventory"
	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/infrastructure/memory"
)

const company = "22222222-2222-2222-2222-222222222222"

var actor = entity.Actor{UserID: "u-9", UserName: "Youssef"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T) (*memory.Store, *CreateInvoiceUseCase) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []*entity.Product{
		{ID: "p-ciment", CompanyID: company, SKU: "CIM", Name: "Ciment", Unit: "sac", Price: dec("75"), TaxRate: dec("20"), InitialStock: dec("100"), Stock: dec("100"), CreatedAt: created},
		{ID: "p-sable", CompanyID: company, SKU: "SAB", Name: "Sable", Unit: "t", Price: dec("180"), TaxRate: dec("14"), InitialStock: dec("12.5"), Stock: dec("12.5"), CreatedAt: created.Add(time.Hour)},
		{ID: "p-autre", CompanyID: "autre", SKU: "X", Name: "Ciment", CreatedAt: created},
	} {
		p.Description = string(rune('a' + i))
		require.NoError(t, store.Products().Create(ctx, p))
	}
	sales := appinventory.NewRegisterMovementUseCase(store, nil, nil)
	return store, NewCreateInvoiceUseCase(store, sales, store.Products(), store.Invoices(), nil)
}

func onHand(t *testing.T, store *memory.Store, productID string) decimal.Decimal {
	t.Helper()
	q := appinventory.NewUseCase(store.Products(), store.Movements(), store.Invoices())
	level, err := q.GetCurrentStock(context.Background(), company, productID)
	require.NoError(t, err)
	return level.OnHand
}

func TestCreateInvoice_ResuelveProductosYGeneraVentas(t *testing.T) {
	ctx := context.Background()
	store, uc := newFixture(t)

	resp, err := uc.CreateInvoice(ctx, company, actor, dto.CreateInvoiceRequest{
		Number:     "FA-2024-001",
		ClientName: "Chantier Anfa",
		Items: []dto.InvoiceItemRequest{
			{Description: "Ciment", Quantity: dec("30")},
			{ProductID: "p-sable", Quantity: dec("2.5"), UnitPrice: dec("200")},
			{Description: "Transport", Quantity: dec("1"), UnitPrice: dec("300")},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 3)

	assert.Equal(t, "p-ciment", resp.Lines[0].ProductID)
	assert.True(t, resp.Lines[0].UnitPrice.Equal(dec("75")))
	assert.Equal(t, "Sable", resp.Lines[1].Description)
	assert.Empty(t, resp.Lines[2].ProductID)

	// HT: 2250 + 500 + 300 = 3050; TVA: 450 + 70 + 60 = 580
	assert.True(t, resp.NetTotal.Equal(dec("3050")), resp.NetTotal.String())
	assert.True(t, resp.TaxTotal.Equal(dec("580")), resp.TaxTotal.String())
	assert.True(t, resp.GrandTotal.Equal(dec("3630")))

	assert.True(t, onHand(t, store, "p-ciment").Equal(dec("70")))
	assert.True(t, onHand(t, store, "p-sable").Equal(dec("10")))

	movs, err := store.Movements().ListByProduct(ctx, "p-ciment", nil, nil)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeSale, movs[0].Type)
	assert.Equal(t, "FA-2024-001", movs[0].Reference)
	assert.Equal(t, "Youssef", movs[0].UserName)

	stored, _ := store.Products().GetByID(ctx, "p-ciment")
	assert.True(t, stored.Stock.Equal(dec("70")))
}

func TestCreateInvoice_SinStockNoBloquea(t *testing.T) {
	store, uc := newFixture(t)
	_, err := uc.CreateInvoice(context.Background(), company, actor, dto.CreateInvoiceRequest{
		ClientName: "Client",
		Items:      []dto.InvoiceItemRequest{{ProductID: "p-sable", Quantity: dec("20")}},
	})
	require.NoError(t, err)
	assert.True(t, onHand(t, store, "p-sable").Equal(dec("-7.5")))
}

func TestCreateInvoice_NumeroPorDefecto(t *testing.T) {
	_, uc := newFixture(t)
	uc.now = func() time.Time { return time.Unix(1700000000, 0) }
	resp, err := uc.CreateInvoice(context.Background(), company, actor, dto.CreateInvoiceRequest{
		ClientName: "Client",
		Items:      []dto.InvoiceItemRequest{{Description: "Main d'oeuvre", Quantity: dec("1"), UnitPrice: dec("10")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "FA-1700000000", resp.Number)
}

func TestCreateInvoice_Rechazos(t *testing.T) {
	_, uc := newFixture(t)
	bad := dec("19")
	cases := []struct {
		name string
		item dto.InvoiceItemRequest
		want error
	}{
		{"cantidad cero", dto.InvoiceItemRequest{Description: "x", Quantity: dec("0")}, domain.ErrInvalidInvoiceLine},
		{"precio negativo", dto.InvoiceItemRequest{Description: "x", Quantity: dec("1"), UnitPrice: dec("-1")}, domain.ErrInvalidInvoiceLine},
		{"TVA no marroquí", dto.InvoiceItemRequest{Description: "x", Quantity: dec("1"), TaxRate: &bad}, domain.ErrInvalidTaxRate},
		{"producto inexistente", dto.InvoiceItemRequest{ProductID: "nope", Quantity: dec("1")}, domain.ErrNotFound},
		{"producto de otra empresa", dto.InvoiceItemRequest{ProductID: "p-autre", Quantity: dec("1")}, domain.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateInvoice(context.Background(), company, actor, dto.CreateInvoiceRequest{
				ClientName: "Client",
				Items:      []dto.InvoiceItemRequest{tc.item},
			})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateInvoice_NumeroDuplicadoHaceRollback(t *testing.T) {
	ctx := context.Background()
	store, uc := newFixture(t)
	req := dto.CreateInvoiceRequest{
		Number:     "FA-1",
		ClientName: "Client",
		Items:      []dto.InvoiceItemRequest{{ProductID: "p-ciment", Quantity: dec("5")}},
	}
	_, err := uc.CreateInvoice(ctx, company, actor, req)
	require.NoError(t, err)
	_, err = uc.CreateInvoice(ctx, company, actor, req)
	require.ErrorIs(t, err, domain.ErrDuplicate)

	assert.True(t, onHand(t, store, "p-ciment").Equal(dec("95")))
	movs, _ := store.Movements().ListByProduct(ctx, "p-ciment", nil, nil)
	assert.Len(t, movs, 1)
}

func TestGetInvoice(t *testing.T) {
	ctx := context.Background()
	_, uc := newFixture(t)
	created, err := uc.CreateInvoice(ctx, company, actor, dto.CreateInvoiceRequest{
		ClientName: "Client",
		Items:      []dto.InvoiceItemRequest{{ProductID: "p-ciment", Quantity: dec("1")}},
	})
	require.NoError(t, err)

	got, err := uc.GetInvoice(ctx, company, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Number, got.Number)
	assert.Len(t, got.Lines, 1)

	_, err = uc.GetInvoice(ctx, "autre", created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

type fakePDF struct {
	lines []InvoiceLineForPDF
}

func (f *fakePDF) GenerateInvoicePDF(_ context.Context, _ *entity.Invoice, lines []InvoiceLineForPDF) ([]byte, error) {
	f.lines = lines
	return []byte("%PDF-1.4"), nil
}

func TestDownloadInvoicePDF(t *testing.T) {
	ctx := context.Background()
	store, uc := newFixture(t)
	created, err := uc.CreateInvoice(ctx, company, actor, dto.CreateInvoiceRequest{
		Number:     "FA 2024/7",
		ClientName: "Client",
		Items:      []dto.InvoiceItemRequest{{ProductID: "p-sable", Quantity: dec("1")}},
	})
	require.NoError(t, err)

	gen := &fakePDF{}
	pdfUC := NewPDFUseCase(store.Invoices(), store.Products(), gen)
	data, filename, err := pdfUC.DownloadInvoicePDF(ctx, company, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, "facture_FA_2024_7.pdf", filename)
	require.Len(t, gen.lines, 1)
	assert.Equal(t, "t", gen.lines[0].Unit)

	_, _, err = pdfUC.DownloadInvoicePDF(ctx, company, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
