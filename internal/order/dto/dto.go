package dto

type CreateSessionRequest struct {
	CustomerID  string         `json:"customer_id" validate:"max=128"`
	StaffID     string         `json:"staff_id" validate:"max=128"`
	Source      string         `json:"source" validate:"omitempty,oneof=pos kiosk online mobile phone"`
	ServiceType string         `json:"service_type" validate:"omitempty,oneof=dine_in takeout delivery"`
	TableNumber string         `json:"table_number" validate:"max=16"`
	Preferences map[string]any `json:"preferences"`
}

type AddItemRequest struct {
	ProductID           string            `json:"product_id" validate:"required,uuid"`
	Quantity            int               `json:"quantity" validate:"required,min=1,max=999"`
	Modifications       map[string]string `json:"modifications"`
	SpecialInstructions string            `json:"special_instructions" validate:"max=500"`
}

type ConfirmOrderRequest struct {
	PaymentData *PaymentDataRequest `json:"payment_data"`
}

type PaymentDataRequest struct {
	Method    string  `json:"method" validate:"required,max=32"`
	Amount    float64 `json:"amount" validate:"gte=0,cents"`
	Reference string  `json:"reference" validate:"max=128"`
}
