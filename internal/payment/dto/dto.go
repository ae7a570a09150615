package dto

type CreatePaymentRequest struct {
	OrderID        string  `json:"order_id" validate:"omitempty,uuid"`
	CustomerID     string  `json:"customer_id" validate:"max=128"`
	PaymentMethod  string  `json:"payment_method" validate:"required,max=32"`
	Amount         float64 `json:"amount" validate:"gt=0,cents"`
	TaxAmount      float64 `json:"tax_amount" validate:"gte=0,cents"`
	TipAmount      float64 `json:"tip_amount" validate:"gte=0,cents"`
	DiscountAmount float64 `json:"discount_amount" validate:"gte=0,cents"`
	Currency       string  `json:"currency" validate:"omitempty,len=3,alpha"`
}

type ProcessPaymentRequest struct {
	PaymentMethod string `json:"payment_method" validate:"max=32"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,txstatus"`
	Reason string `json:"reason" validate:"max=500"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
