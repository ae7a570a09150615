// Package realtime delivers transaction change events to live subscribers. Events are
// published after commit, fanned out in process by the Hub, and optionally routed through
// Kafka so every service instance sees every change.
package realtime

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/google/uuid"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

type Event struct {
	ID                string                  `json:"id"`
	Type              EventType               `json:"type"`
	OrganizationID    string                  `json:"organization_id"`
	TransactionType   string                  `json:"transaction_type"`
	TransactionID     string                  `json:"transaction_id"`
	TransactionNumber string                  `json:"transaction_number"`
	Status            model.TransactionStatus `json:"status"`
	TotalAmount       float64                 `json:"total_amount"`
	OccurredAt        time.Time               `json:"occurred_at"`
}

func NewEvent(eventType EventType, tx *model.UniversalTransaction) Event {
	return Event{
		ID:                uuid.New().String(),
		Type:              eventType,
		OrganizationID:    tx.OrganizationID,
		TransactionType:   tx.TransactionType,
		TransactionID:     tx.ID,
		TransactionNumber: tx.TransactionNumber,
		Status:            tx.Status,
		TotalAmount:       tx.TotalAmount,
		OccurredAt:        time.Now().UTC(),
	}
}

// Filter selects events for one organization and, optionally, one transaction type.
type Filter struct {
	OrganizationID  string
	TransactionType string
}

func (f Filter) Match(evt Event) bool {
	if f.OrganizationID != evt.OrganizationID {
		return false
	}
	return f.TransactionType == "" || f.TransactionType == evt.TransactionType
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
