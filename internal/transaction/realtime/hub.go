package realtime

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"go.uber.org/zap"
)

const defaultBuffer = 64

// Hub fans events out to in-process subscribers. A subscriber that falls behind loses
// events rather than stalling publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
	logger logger.ZapLogger
}

type Subscription struct {
	id     uint64
	filter Filter
	ch     chan Event
	hub    *Hub
}

func NewHub(buffer int, log logger.ZapLogger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
		logger: log,
	}
}

// Subscribe registers a subscriber. The returned subscription's channel is closed by
// Close or when the hub shuts down.
func (h *Hub) Subscribe(filter Filter) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		filter: filter,
		ch:     make(chan Event, h.buffer),
		hub:    h,
	}
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

func (h *Hub) Publish(_ context.Context, evt Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.filter.Match(evt) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			h.logger.Warn("realtime subscriber is full, dropping event",
				zap.Uint64("subscription", sub.id),
				zap.String("transaction_id", evt.TransactionID),
			)
		}
	}
	return nil
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s.id]; !ok {
		return
	}
	delete(h.subs, s.id)
	close(s.ch)
}
