package order

import (
	"testing"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitPriceSizeModifiers(t *testing.T) {
	tests := []struct {
		size string
		want float64
	}{
		{size: "small", want: 9.50},
		{size: "medium", want: 10.00},
		{size: "large", want: 10.75},
		{size: "venti", want: 10.00},
		{size: "", want: 10.00},
	}
	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			assert.Equal(t, tt.want, UnitPrice(10.00, map[string]string{"size": tt.size}))
		})
	}
	assert.Equal(t, 4.50, UnitPrice(4.50, nil))
}

func TestLineAmount(t *testing.T) {
	assert.Equal(t, 21.50, LineAmount(UnitPrice(10.00, map[string]string{"size": "large"}), 2))
}

func TestCalculateEmptySession(t *testing.T) {
	calc := Calculate("s1", nil)

	assert.Zero(t, calc.Subtotal)
	assert.Zero(t, calc.TaxAmount)
	assert.Zero(t, calc.TotalAmount)
	assert.Zero(t, calc.LoyaltyPointsEarned)
	assert.Empty(t, calc.Breakdown)
}

func TestCalculateSingleItem(t *testing.T) {
	calc := Calculate("s1", []model.OrderItem{
		{ID: "i1", ProductName: "Latte", Quantity: 1, UnitPrice: 4.50, LineAmount: 4.50, LineOrder: 1},
	})

	assert.Equal(t, 4.50, calc.Subtotal)
	assert.Equal(t, 0.36, calc.TaxAmount)
	assert.Equal(t, 4.86, calc.TotalAmount)
	assert.Equal(t, int64(4), calc.LoyaltyPointsEarned)
	require.Len(t, calc.Breakdown, 1)
	assert.Equal(t, 4.86, calc.Breakdown[0].Total)
}

func TestCalculateTotalIsSubtotalPlusEightPercent(t *testing.T) {
	items := []model.OrderItem{
		{ID: "b", LineAmount: 21.50, LineOrder: 2},
		{ID: "a", LineAmount: 3.99, LineOrder: 1},
		{ID: "c", LineAmount: 12.25, LineOrder: 3},
	}
	calc := Calculate("s1", items)

	assert.Equal(t, 37.74, calc.Subtotal)
	assert.Equal(t, money.Mul(37.74, 1.08), calc.TotalAmount)
	assert.Equal(t, []string{"a", "b", "c"}, []string{calc.Breakdown[0].ItemID, calc.Breakdown[1].ItemID, calc.Breakdown[2].ItemID})
}
