package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(org, txType string) Event {
	return NewEvent(EventInsert, &model.UniversalTransaction{
		BaseModel:       model.BaseModel{ID: "t-" + org + "-" + txType},
		OrganizationID:  org,
		TransactionType: txType,
		Status:          model.StatusPending,
	})
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case evt, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func TestHubFiltersByOrganizationAndType(t *testing.T) {
	hub := NewHub(4, logger.NewNop())
	all := hub.Subscribe(Filter{OrganizationID: "org-1"})
	payments := hub.Subscribe(Filter{OrganizationID: "org-1", TransactionType: model.TransactionTypePayment})
	other := hub.Subscribe(Filter{OrganizationID: "org-2"})

	require.NoError(t, hub.Publish(context.Background(), event("org-1", model.TransactionTypeOrder)))
	require.NoError(t, hub.Publish(context.Background(), event("org-1", model.TransactionTypePayment)))

	assert.Equal(t, model.TransactionTypeOrder, receive(t, all).TransactionType)
	assert.Equal(t, model.TransactionTypePayment, receive(t, all).TransactionType)
	assert.Equal(t, model.TransactionTypePayment, receive(t, payments).TransactionType)
	assert.Empty(t, other.Events())
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub(1, logger.NewNop())
	sub := hub.Subscribe(Filter{OrganizationID: "org-1"})

	for i := 0; i < 3; i++ {
		require.NoError(t, hub.Publish(context.Background(), event("org-1", model.TransactionTypeOrder)))
	}
	assert.Len(t, sub.Events(), 1)
}

func TestSubscriptionClose(t *testing.T) {
	hub := NewHub(0, logger.NewNop())
	sub := hub.Subscribe(Filter{OrganizationID: "org-1"})
	assert.Equal(t, 1, hub.SubscriberCount())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount())
	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	hub := NewHub(0, logger.NewNop())
	sub := hub.Subscribe(Filter{OrganizationID: "org-1"})

	hub.Close()
	hub.Close()
	_, ok := <-sub.Events()
	assert.False(t, ok)

	late := hub.Subscribe(Filter{OrganizationID: "org-1"})
	_, ok = <-late.Events()
	assert.False(t, ok)
}

type fakeWriter struct {
	key   string
	value []byte
	err   error
}

func (w *fakeWriter) Publish(_ context.Context, key string, value []byte) error {
	w.key = key
	w.value = value
	return w.err
}

func TestKafkaPublisherKeysByOrganization(t *testing.T) {
	w := &fakeWriter{}
	evt := event("org-1", model.TransactionTypeOrder)

	require.NoError(t, NewKafkaPublisher(w).Publish(context.Background(), evt))
	assert.Equal(t, "org-1", w.key)

	var decoded Event
	require.NoError(t, json.Unmarshal(w.value, &decoded))
	assert.Equal(t, evt.TransactionID, decoded.TransactionID)

	w.err = errors.New("leader not available")
	assert.Error(t, NewKafkaPublisher(w).Publish(context.Background(), evt))
}

type fakeReader struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func TestListenerFeedsHub(t *testing.T) {
	valid, err := json.Marshal(event("org-1", model.TransactionTypePayment))
	require.NoError(t, err)
	incomplete, err := json.Marshal(Event{ID: "e-1"})
	require.NoError(t, err)

	reader := &fakeReader{messages: []kafka.Message{
		{Value: []byte("not json")},
		{Value: incomplete},
		{Value: valid},
	}}
	hub := NewHub(4, logger.NewNop())
	sub := hub.Subscribe(Filter{OrganizationID: "org-1"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewListener(reader, hub, logger.NewNop()).Start(ctx)
		close(done)
	}()

	evt := receive(t, sub)
	assert.Equal(t, model.TransactionTypePayment, evt.TransactionType)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
	assert.Empty(t, sub.Events())
}
