package dto

import "time"

type LineRequest struct {
	LineEntityID string  `json:"line_entity_id"`
	LineType     string  `json:"line_type" validate:"omitempty,max=32"`
	Description  string  `json:"description" validate:"max=255"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	UnitPrice    float64 `json:"unit_price"`
	LineAmount   float64 `json:"line_amount"`
	LineOrder    int     `json:"line_order" validate:"gte=1"`
}

type CreateTransactionRequest struct {
	TransactionType   string        `json:"transaction_type" validate:"required,max=32"`
	TransactionNumber string        `json:"transaction_number" validate:"max=64"`
	TransactionDate   *time.Time    `json:"transaction_date"`
	TotalAmount       float64       `json:"total_amount"`
	Currency          string        `json:"currency" validate:"omitempty,len=3"`
	Status            string        `json:"status" validate:"omitempty,txstatus"`
	Lines             []LineRequest `json:"lines" validate:"dive"`
}

type AppendLinesRequest struct {
	Lines []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,txstatus"`
	// ExpectedStatus turns the write into a compare-and-set.
	ExpectedStatus string `json:"expected_status" validate:"omitempty,txstatus"`
}

func (r LineRequest) Input() LineInput {
	return LineInput{
		LineEntityID: r.LineEntityID,
		LineType:     r.LineType,
		Description:  r.Description,
		Quantity:     r.Quantity,
		UnitPrice:    r.UnitPrice,
		LineAmount:   r.LineAmount,
		LineOrder:    r.LineOrder,
	}
}
