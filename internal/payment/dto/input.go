package dto

import "github.com/fekuna/omnipos-order-service/internal/model"

type CreatePaymentInput struct {
	OrganizationID string
	OrderID        string
	CustomerID     string
	PaymentMethod  string
	// Amount is the gross charge, tax and tip included, discount already taken off.
	Amount         float64
	TaxAmount      float64
	TipAmount      float64
	DiscountAmount float64
	Currency       string
	CreatedBy      string
}

type UpdateStatusInput struct {
	OrganizationID string
	PaymentID      string
	Status         model.TransactionStatus
	Reason         string
	ChangedBy      string
}
