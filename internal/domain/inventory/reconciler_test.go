package inventory_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func adj(productID, qty string) *entity.StockMovement {
	return &entity.StockMovement{ProductID: productID, Type: entity.MovementTypeAdjustment, Quantity: d(qty)}
}

func line(productID, qty string) *entity.InvoiceLine {
	return &entity.InvoiceLine{ProductID: productID, Quantity: d(qty)}
}

// Escenario completo: 100 iniciales, factura de 30, ajuste +10 → 80, aunque Stock diga otra cosa.
func TestCurrentStock_EscenarioReconciliacion(t *testing.T) {
	p := &entity.Product{ID: "p", Name: "Huile d'olive", InitialStock: d("100"), Stock: d("999")}
	movements := []*entity.StockMovement{
		{ProductID: "p", Type: entity.MovementTypeInitial, Quantity: d("100")},
		{ProductID: "p", Type: entity.MovementTypeSale, Quantity: d("-30")},
		adj("p", "10"),
	}
	lines := []*entity.InvoiceLine{line("p", "30")}

	assert.True(t, d("80").Equal(inventory.CurrentStock(p, movements, lines)),
		"100 - 30 + 10 = 80, independiente del campo Stock")
}

// Los movimientos initial y sale no se suman: el inicial viene del producto y las ventas de las líneas.
func TestCurrentStock_IgnoraInitialSaleYReturn(t *testing.T) {
	p := &entity.Product{ID: "p", InitialStock: d("5")}
	movements := []*entity.StockMovement{
		{ProductID: "p", Type: entity.MovementTypeInitial, Quantity: d("5")},
		{ProductID: "p", Type: entity.MovementTypeSale, Quantity: d("-2")},
		{ProductID: "p", Type: entity.MovementTypeReturn, Quantity: d("1")},
	}
	assert.True(t, d("5").Equal(inventory.CurrentStock(p, movements, nil)))
}

func TestCurrentStock_SinPisoEnCero(t *testing.T) {
	p := &entity.Product{ID: "p", InitialStock: d("2")}
	got := inventory.CurrentStock(p, nil, []*entity.InvoiceLine{line("p", "5")})
	assert.True(t, d("-3").Equal(got), "el reconciliador no aplica piso; got %s", got)
}

func TestCurrentStock_FiltraPorProducto(t *testing.T) {
	p := &entity.Product{ID: "p", InitialStock: d("10")}
	movements := []*entity.StockMovement{adj("otro", "50"), adj("p", "1.5")}
	lines := []*entity.InvoiceLine{line("otro", "3"), line("", "4"), line("p", "0.25")}

	assert.True(t, d("11.25").Equal(inventory.CurrentStock(p, movements, lines)))
}

func TestCurrentStock_ProductoNil(t *testing.T) {
	assert.True(t, inventory.CurrentStock(nil, []*entity.StockMovement{adj("p", "3")}, nil).IsZero())
}

// Permutar movimientos y líneas con el mismo multiconjunto de deltas no cambia el resultado.
func TestCurrentStock_IndependienteDelOrden(t *testing.T) {
	p := &entity.Product{ID: "p", InitialStock: d("40")}
	movements := []*entity.StockMovement{adj("p", "3"), adj("p", "-7"), adj("p", "12.5"), adj("p", "-1")}
	lines := []*entity.InvoiceLine{line("p", "4"), line("p", "9"), line("p", "0.5")}
	want := inventory.CurrentStock(p, movements, lines)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		rng.Shuffle(len(movements), func(a, b int) { movements[a], movements[b] = movements[b], movements[a] })
		rng.Shuffle(len(lines), func(a, b int) { lines[a], lines[b] = lines[b], lines[a] })
		assert.True(t, want.Equal(inventory.CurrentStock(p, movements, lines)), "iteración %d", i)
	}
	assert.True(t, d("34").Equal(want))
}

func TestCalculateCurrentStock_ProductoNoCargado(t *testing.T) {
	products := []*entity.Product{{ID: "a", InitialStock: d("7")}}
	assert.True(t, inventory.CalculateCurrentStock("zzz", products, nil, nil).IsZero())
	assert.True(t, d("7").Equal(inventory.CalculateCurrentStock("a", products, nil, nil)))
}

// Una línea sin producto resuelto no afecta a ningún producto existente.
func TestCurrentStock_LineaSinProductoNoAfecta(t *testing.T) {
	products := []*entity.Product{
		{ID: "a", InitialStock: d("7")},
		{ID: "b", InitialStock: d("3")},
	}
	before := []decimal.Decimal{
		inventory.CurrentStock(products[0], nil, nil),
		inventory.CurrentStock(products[1], nil, nil),
	}
	lines := []*entity.InvoiceLine{{Description: "Produit inconnu", Quantity: d("2")}}
	for i, p := range products {
		assert.True(t, before[i].Equal(inventory.CurrentStock(p, nil, lines)))
	}
}
