package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturati-api/internal/domain/inventory"
)

func TestFormatQuantity(t *testing.T) {
	cases := []struct {
		q    string
		unit string
		want string
	}{
		{"2.5", "kg", "2,500"},
		{"2.5", "piece", "3"},
		{"2.5", "KG", "2,500"},
		{"0.1234", "Tonne", "0,123"},
		{"12", "t", "12,000"},
		{"2.4", "litre", "2"},
		{"-2.5", "pièce", "-2"},
		{"80", "", "80"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, inventory.FormatQuantity(decimal.RequireFromString(tc.q), tc.unit),
			"FormatQuantity(%s, %q)", tc.q, tc.unit)
	}
}

func TestIsWeightUnit(t *testing.T) {
	assert.True(t, inventory.IsWeightUnit(" Kg "))
	assert.True(t, inventory.IsWeightUnit("tonnes"))
	assert.False(t, inventory.IsWeightUnit("carton"))
}

func TestSafeFileComponent(t *testing.T) {
	assert.Equal(t, "Cafe_creme_1_2", inventory.SafeFileComponent("Café crème 1/2"))
	assert.Equal(t, "produit", inventory.SafeFileComponent("   "))
	assert.Equal(t, "Huile_d'olive", inventory.SafeFileComponent("Huile d'olive"))
}
