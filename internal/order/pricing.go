package order

import (
	"sort"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/money"
)

// TaxRate is the flat sales tax applied to every order.
const TaxRate = 0.08

var sizeModifiers = map[string]float64{
	"small":  -0.50,
	"medium": 0,
	"large":  0.75,
}

// SizeModifier returns the price adjustment for a size. Unknown sizes cost nothing extra.
func SizeModifier(size string) float64 {
	return sizeModifiers[size]
}

// UnitPrice applies the size modification, if any, to the product base price.
func UnitPrice(basePrice float64, modifications map[string]string) float64 {
	return money.Sum(basePrice, SizeModifier(modifications[AttrSize]))
}

func LineAmount(unitPrice float64, quantity int) float64 {
	return money.Mul(unitPrice, float64(quantity))
}

// Calculate totals the items of a session. Discounts are not modelled yet and stay zero.
func Calculate(sessionID string, items []model.OrderItem) *model.OrderCalculation {
	sorted := append([]model.OrderItem{}, items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LineOrder < sorted[j].LineOrder })

	calc := &model.OrderCalculation{
		SessionID: sessionID,
		TaxRate:   TaxRate,
		Breakdown: make([]model.LineBreakdown, 0, len(sorted)),
	}

	amounts := make([]float64, 0, len(sorted))
	for _, item := range sorted {
		tax := money.Mul(item.LineAmount, TaxRate)
		calc.Breakdown = append(calc.Breakdown, model.LineBreakdown{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			Description: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.LineAmount,
			Tax:         tax,
			Total:       money.Sum(item.LineAmount, tax),
			LineOrder:   item.LineOrder,
		})
		amounts = append(amounts, item.LineAmount)
	}

	calc.Subtotal = money.Sum(amounts...)
	calc.TaxAmount = money.Mul(calc.Subtotal, TaxRate)
	calc.TotalAmount = money.Sub(money.Sum(calc.Subtotal, calc.TaxAmount), money.Sum(calc.DiscountAmount, calc.LoyaltyDiscount))
	calc.LoyaltyPointsEarned = money.Floor(calc.TotalAmount)
	return calc
}
