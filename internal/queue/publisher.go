// Package queue publishes storefront events to RabbitMQ.
//
// Queues are durable and messages persistent JSON. Publishing opens a short
// connection per message, which keeps the publisher free of reconnect state
// at the volumes a campus shop sees.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue names.
const (
	OrderPlacedQueue  = "order.placed"
	SheetReplaceQueue = "sheet.replace"
)

// DefaultDialTimeout bounds the broker dial and AMQP handshake of one publish.
const DefaultDialTimeout = 3 * time.Second

// ErrDisabled is returned when no broker URL is configured.
var ErrDisabled = errors.New("queue: publishing disabled")

// OrderPlaced is published after an order commits.
type OrderPlaced struct {
	OrderID       uuid.UUID  `json:"orderId"`
	EventID       *uuid.UUID `json:"eventId,omitempty"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	TotalCents    int64      `json:"totalCents"`
	// Day is the consumption day mined from the answers, if any.
	Day      string    `json:"day,omitempty"`
	PlacedAt time.Time `json:"placedAt"`
}

// SheetReplace asks the sheet worker to replace an event's sheet with
// exactly these headers and rows.
type SheetReplace struct {
	EventID     uuid.UUID  `json:"eventId"`
	EventSlug   string     `json:"eventSlug"`
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

// Publisher sends messages to RabbitMQ.
type Publisher struct {
	url         string
	log         *slog.Logger
	now         func() time.Time
	dialTimeout time.Duration
}

// NewPublisher constructs a Publisher. An empty url disables publishing.
func NewPublisher(url string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{url: url, log: log, now: time.Now, dialTimeout: DefaultDialTimeout}
}

// Enabled reports whether a broker is configured.
func (p *Publisher) Enabled() bool {
	return p != nil && p.url != ""
}

// PublishOrderPlaced publishes to the order.placed queue.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, msg OrderPlaced) error {
	return p.publish(ctx, OrderPlacedQueue, msg)
}

// PublishSheetReplace publishes to the sheet.replace queue.
func (p *Publisher) PublishSheetReplace(ctx context.Context, msg SheetReplace) error {
	return p.publish(ctx, SheetReplaceQueue, msg)
}

func (p *Publisher) publish(ctx context.Context, queue string, v any) error {
	if !p.Enabled() {
		return ErrDisabled
	}
	msg, err := newPublishing(v, p.now())
	if err != nil {
		return fmt.Errorf("queue.Publisher.publish: %w", err)
	}

	conn, err := p.dial(ctx)
	if err != nil {
		return fmt.Errorf("queue.Publisher.publish: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("queue.Publisher.publish: channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("queue.Publisher.publish: declare %s: %w", queue, err)
	}

	// Default exchange, routing key = queue name.
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return fmt.Errorf("queue.Publisher.publish: %s: %w", queue, err)
	}
	p.log.DebugContext(ctx, "message published", "queue", queue, "message_id", msg.MessageId)
	return nil
}

// dial connects to the broker, giving up after dialTimeout or the context
// deadline, whichever comes first. amqp091 has no context-aware dial.
func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

func newPublishing(v any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}
