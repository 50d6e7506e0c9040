package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/infrastructure/memory"
)

func TestStockOverviewYAlertas(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := seedProduct(t, store, "p-a", "Agglo", "100") // ok
	b := seedProduct(t, store, "p-b", "Brique", "6")  // 6 − 3 = 3 ≤ 5 → faible
	c := seedProduct(t, store, "p-c", "Chaux", "2")   // 2 − 2 = 0 → rupture
	d := seedProduct(t, store, "p-d", "Dalle", "5")   // 5 ≤ 5 → faible
	addInvoice(t, store, "inv-1",
		&entity.InvoiceLine{ProductID: b.ID, Quantity: dec("3")},
		&entity.InvoiceLine{ProductID: c.ID, Quantity: dec("2")},
	)

	uc := NewUseCase(store.Products(), store.Movements(), store.Invoices())
	overview, err := uc.StockOverview(ctx, testCompany)
	require.NoError(t, err)
	assert.Equal(t, 4, overview.TotalProducts)
	assert.Equal(t, 1, overview.OutOfStock)
	assert.Equal(t, 2, overview.LowStock)

	alerts, err := uc.StockAlerts(ctx, testCompany)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, c.ID, alerts[0].ProductID)
	assert.Equal(t, "Rupture de stock", alerts[0].StatusLabel)
	assert.Equal(t, b.ID, alerts[1].ProductID) // déficit 2
	assert.Equal(t, d.ID, alerts[2].ProductID) // déficit 0
	assert.Equal(t, 3, alerts[2].Priority)
	for _, al := range alerts {
		assert.NotEqual(t, a.ID, al.ProductID)
	}
}

func TestGetCurrentStock_Errores(t *testing.T) {
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Agglo", "1")
	uc := NewUseCase(store.Products(), store.Movements(), store.Invoices())

	_, err := uc.GetCurrentStock(context.Background(), testCompany, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.GetCurrentStock(context.Background(), "otra", p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestHistory_MasRecientesPrimero(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Agglo", "10")
	rec := NewRegisterMovementUseCase(store, nil, nil)
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	_, err := rec.RecordAdjustment(ctx, AdjustmentInput{
		CompanyID: testCompany, ProductID: p.ID, Actor: testActor,
		Mode: "add", Quantity: dec("2"), Reason: "Retour chantier", EffectiveAt: &at,
	})
	require.NoError(t, err)

	uc := NewUseCase(store.Products(), store.Movements(), store.Invoices())
	hist, err := uc.History(ctx, testCompany, p.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "Ajustement", hist[0].TypeLabel)
	assert.Equal(t, "Stock initial", hist[1].TypeLabel)
}

func TestExportHistory_CSV(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Ciment gris", "10")
	rec := NewRegisterMovementUseCase(store, nil, nil)
	at := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	_, err := rec.RecordAdjustment(ctx, AdjustmentInput{
		CompanyID: testCompany, ProductID: p.ID, Actor: testActor,
		Mode: "subtract", Quantity: dec("4"), Reason: "Casse, sac percé", Reference: "BL-7", EffectiveAt: &at,
	})
	require.NoError(t, err)

	uc := NewUseCase(store.Products(), store.Movements(), store.Invoices())
	uc.now = func() time.Time { return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) }
	file, err := uc.ExportHistory(ctx, testCompany, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "historique_Ciment_gris_2024-04-01.csv", file.Filename)

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, historyHeader, records[0])
	assert.Equal(t, []string{"15/03/2024", "14:30", "Ajustement", "-4", "10", "6", "Casse, sac percé", "BL-7", "Amina"}, records[1])
	assert.Equal(t, "+10", records[2][3])
}

func TestExportHistory_XLSX(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Sable", "10")
	uc := NewUseCase(store.Products(), store.Movements(), store.Invoices())

	file, err := uc.ExportHistory(ctx, testCompany, p.ID, "XLSX")
	require.NoError(t, err)
	assert.Contains(t, file.Filename, ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Stock initial", rows[1][2])
}

func TestExportHistory_FormatoInvalido(t *testing.T) {
	store := memory.NewStore()
	p := seedProduct(t, store, "p-1", "Sable", "10")
	uc := NewUseCase(store.Products(), store.Movements(), store.Invoices())
	_, err := uc.ExportHistory(context.Background(), testCompany, p.ID, "pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
