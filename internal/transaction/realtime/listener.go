package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Listener feeds transaction events from Kafka into the local hub.
type Listener struct {
	reader MessageReader
	hub    Publisher
	logger logger.ZapLogger
}

func NewListener(reader MessageReader, hub Publisher, log logger.ZapLogger) *Listener {
	return &Listener{
		reader: reader,
		hub:    hub,
		logger: log,
	}
}

func (l *Listener) Start(ctx context.Context) {
	l.logger.Info("Starting transaction event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping transaction event listener")
			return
		default:
			msg, err := l.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *Listener) processMessage(ctx context.Context, value []byte) {
	var evt Event
	if err := json.Unmarshal(value, &evt); err != nil {
		l.logger.Error("Failed to unmarshal transaction event", zap.Error(err))
		return
	}
	if evt.TransactionID == "" || evt.OrganizationID == "" {
		l.logger.Warn("Ignoring incomplete transaction event", zap.String("event_id", evt.ID))
		return
	}
	if err := l.hub.Publish(ctx, evt); err != nil {
		l.logger.Error("Failed to deliver transaction event",
			zap.String("event_id", evt.ID),
			zap.Error(err),
		)
	}
}
