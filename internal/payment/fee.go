package payment

import "github.com/fekuna/omnipos-order-service/internal/pkg/money"

// Card network fee approximation.
const (
	FeeRate  = 0.029
	FeeFixed = 0.30
)

// ProcessingFee returns round2(amount * 2.9% + 0.30).
func ProcessingFee(amount float64) float64 {
	return money.Sum(money.Mul(amount, FeeRate), FeeFixed)
}

type Breakdown struct {
	BaseAmount     float64 `json:"base_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	TipAmount      float64 `json:"tip_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	ProcessingFee  float64 `json:"processing_fee"`
	NetAmount      float64 `json:"net_amount"`
}

// Split divides a gross charge into its parts. The base is what remains of the amount
// after tax and tip, before the discount was taken off.
func Split(amount, tax, tip, discount float64) Breakdown {
	fee := ProcessingFee(amount)
	return Breakdown{
		BaseAmount:     money.Sub(money.Sum(amount, discount), money.Sum(tax, tip)),
		TaxAmount:      money.Round2(tax),
		TipAmount:      money.Round2(tip),
		DiscountAmount: money.Round2(discount),
		ProcessingFee:  fee,
		NetAmount:      money.Sub(amount, fee),
	}
}
