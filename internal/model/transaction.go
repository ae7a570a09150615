package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

const (
	TransactionTypeOrder   = "ORDER"
	TransactionTypePayment = "PAYMENT"
)

const (
	LineTypeItem     = "item"
	LineTypeTax      = "tax"
	LineTypeTip      = "tip"
	LineTypeDiscount = "discount"
	LineTypeFee      = "processing_fee"
)

type UniversalTransaction struct {
	BaseModel
	OrganizationID    string            `db:"organization_id" json:"organization_id"`
	TransactionType   string            `db:"transaction_type" json:"transaction_type"`
	TransactionNumber string            `db:"transaction_number" json:"transaction_number"`
	TransactionDate   time.Time         `db:"transaction_date" json:"transaction_date"`
	TotalAmount       float64           `db:"total_amount" json:"total_amount"`
	Currency          string            `db:"currency" json:"currency"`
	Status            TransactionStatus `db:"status" json:"status"`
	SourceEntityID    *string           `db:"source_entity_id" json:"source_entity_id,omitempty"`
	Details           types.JSONText    `db:"details" json:"details,omitempty"`
	Lines             []TransactionLine `db:"-" json:"lines,omitempty"`
}

type TransactionLine struct {
	ID            string    `db:"id" json:"id"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	LineEntityID  *string   `db:"line_entity_id" json:"line_entity_id,omitempty"`
	LineType      string    `db:"line_type" json:"line_type"`
	Description   string    `db:"description" json:"description"`
	Quantity      float64   `db:"quantity" json:"quantity"`
	UnitPrice     float64   `db:"unit_price" json:"unit_price"`
	LineAmount    float64   `db:"line_amount" json:"line_amount"`
	LineOrder     int       `db:"line_order" json:"line_order"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
