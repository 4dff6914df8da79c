// Package amqppub publishes gate payment events to a RabbitMQ queue.
//
// Publishing is asynchronous: Callback enqueues into a bounded buffer and a
// single worker drains it, so a slow or unavailable broker never delays a
// gated request. Events are dropped when the buffer is full.
package amqppub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/nacorid/x402-gate"
)

// Channel is the subset of *amqp.Channel used by the Publisher.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Message is the JSON body published for each event.
type Message struct {
	Type        x402.PaymentEventType `json:"type"`
	Stage       x402.PaymentStage     `json:"stage"`
	Timestamp   time.Time             `json:"timestamp"`
	RequestID   string                `json:"requestId"`
	URL         string                `json:"url"`
	Amount      string                `json:"amount"`
	Asset       string                `json:"asset"`
	Network     string                `json:"network"`
	Scheme      string                `json:"scheme"`
	Recipient   string                `json:"recipient"`
	Transaction string                `json:"transaction,omitempty"`
	Error       string                `json:"error,omitempty"`
	DurationMS  int64                 `json:"durationMs"`
}

func newMessage(e x402.PaymentEvent) Message {
	m := Message{
		Type:        e.Type,
		Stage:       e.Stage,
		Timestamp:   e.Timestamp.UTC(),
		RequestID:   e.RequestID,
		URL:         e.URL,
		Amount:      e.Amount,
		Asset:       e.Asset,
		Network:     e.Network,
		Scheme:      e.Scheme,
		Recipient:   e.Recipient,
		Transaction: e.Transaction,
		DurationMS:  e.Duration.Milliseconds(),
	}
	if e.Error != nil {
		m.Error = e.Error.Error()
	}
	return m
}

// Publisher forwards payment events to a queue on the default exchange.
type Publisher struct {
	ch             Channel
	queue          string
	logger         *zap.Logger
	publishTimeout time.Duration
	closers        []io.Closer

	mu     sync.RWMutex
	closed bool
	events chan x402.PaymentEvent
	done   chan struct{}
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used for publish failures.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithBufferSize sets how many events may wait for the worker.
func WithBufferSize(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan x402.PaymentEvent, size)
		}
	}
}

// WithPublishTimeout bounds each publish call.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.publishTimeout = d
		}
	}
}

// New starts a Publisher that writes to queue through ch.
func New(ch Channel, queue string, opts ...Option) *Publisher {
	p := &Publisher{
		ch:             ch,
		queue:          queue,
		logger:         zap.NewNop(),
		publishTimeout: 5 * time.Second,
		events:         make(chan x402.PaymentEvent, 256),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Dial connects to RabbitMQ, declares a durable queue and starts a Publisher on it.
// Close releases the connection.
func Dial(url, queue string, opts ...Option) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	p := New(ch, queue, opts...)
	p.closers = []io.Closer{ch, conn}
	return p, nil
}

// Callback enqueues e for publishing. It never blocks and is safe to use as an
// x402.PaymentCallback.
func (p *Publisher) Callback(e x402.PaymentEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.events <- e:
	default:
		p.logger.Warn("payment event dropped, publisher buffer full",
			zap.String("request_id", e.RequestID),
			zap.String("type", string(e.Type)))
	}
}

// Close stops accepting events, publishes the ones already buffered and closes
// the underlying channel and connection when the Publisher owns them.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	<-p.done

	var firstErr error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *Publisher) run() {
	defer close(p.done)
	for e := range p.events {
		if err := p.publish(e); err != nil {
			p.logger.Error("failed to publish payment event",
				zap.String("request_id", e.RequestID),
				zap.String("queue", p.queue),
				zap.Error(err))
		}
	}
}

func (p *Publisher) publish(e x402.PaymentEvent) error {
	body, err := json.Marshal(newMessage(e))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    e.RequestID,
			Timestamp:    e.Timestamp,
			Type:         string(e.Type),
			Body:         body,
		})
}
