package dto

import (
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
)

type CreateTransactionInput struct {
	OrganizationID    string
	TransactionType   string
	TransactionNumber string
	TransactionDate   time.Time
	TotalAmount       float64
	Currency          string
	Status            model.TransactionStatus
	SourceEntityID    string
	// Details is marshaled into the details column.
	Details any
	Lines   []LineInput
}

type LineInput struct {
	LineEntityID string
	LineType     string
	Description  string
	Quantity     float64
	UnitPrice    float64
	LineAmount   float64
	LineOrder    int
}
