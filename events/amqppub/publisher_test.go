package amqppub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nacorid/x402-gate"
)

type recordedPublish struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu        sync.Mutex
	published []recordedPublish
	err       error
	block     chan struct{}
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, recordedPublish{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) snapshot() []recordedPublish {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedPublish(nil), f.published...)
}

func testEvent(eventType x402.PaymentEventType) x402.PaymentEvent {
	return x402.PaymentEvent{
		Type:        eventType,
		Stage:       x402.StageSettle,
		Timestamp:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		RequestID:   "req-42",
		Amount:      "10000",
		Network:     x402.NetworkBaseSepolia,
		Scheme:      x402.SchemeExact,
		Transaction: "0xabc",
		Duration:    1500 * time.Millisecond,
	}
}

func TestPublisherPublishesEvents(t *testing.T) {
	ch := &fakeChannel{}
	p := New(ch, "x402.events")

	p.Callback(testEvent(x402.PaymentEventAttempt))
	p.Callback(testEvent(x402.PaymentEventSuccess))
	require.NoError(t, p.Close())

	published := ch.snapshot()
	require.Len(t, published, 2)

	got := published[1]
	assert.Equal(t, "", got.exchange)
	assert.Equal(t, "x402.events", got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, "req-42", got.msg.MessageId)

	var msg Message
	require.NoError(t, json.Unmarshal(got.msg.Body, &msg))
	assert.Equal(t, x402.PaymentEventSuccess, msg.Type)
	assert.Equal(t, "0xabc", msg.Transaction)
	assert.Equal(t, int64(1500), msg.DurationMS)
	assert.Empty(t, msg.Error)
}

func TestPublisherIncludesErrorText(t *testing.T) {
	ch := &fakeChannel{}
	p := New(ch, "q")

	e := testEvent(x402.PaymentEventFailure)
	e.Error = errors.New("nonce reused")
	p.Callback(e)
	require.NoError(t, p.Close())

	published := ch.snapshot()
	require.Len(t, published, 1)
	var msg Message
	require.NoError(t, json.Unmarshal(published[0].msg.Body, &msg))
	assert.Equal(t, "nonce reused", msg.Error)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	ch := &fakeChannel{block: make(chan struct{})}
	p := New(ch, "q", WithBufferSize(1))

	// The worker takes the first event and blocks on it; the second fills
	// the buffer; the rest are dropped.
	for i := 0; i < 10; i++ {
		p.Callback(testEvent(x402.PaymentEventAttempt))
	}
	close(ch.block)
	require.NoError(t, p.Close())

	assert.LessOrEqual(t, len(ch.snapshot()), 2)
	assert.GreaterOrEqual(t, len(ch.snapshot()), 1)
}

func TestPublisherAfterClose(t *testing.T) {
	ch := &fakeChannel{}
	p := New(ch, "q")
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	p.Callback(testEvent(x402.PaymentEventAttempt))
	assert.Empty(t, ch.snapshot())
}

func TestPublisherSurvivesPublishErrors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := New(ch, "q", WithPublishTimeout(time.Second))
	p.Callback(testEvent(x402.PaymentEventAttempt))
	assert.NoError(t, p.Close())
}
