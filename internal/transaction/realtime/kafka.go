package realtime

import (
	"context"
	"encoding/json"
	"fmt"
)

// MessageWriter is satisfied by broker.KafkaProducer.
type MessageWriter interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// KafkaPublisher sends events to the transaction topic keyed by organization, so one
// organization's events stay on one partition.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.writer.Publish(ctx, evt.OrganizationID, data); err != nil {
		return fmt.Errorf("publish event %s: %w", evt.ID, err)
	}
	return nil
}
