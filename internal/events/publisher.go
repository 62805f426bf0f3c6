package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Os-De/hs-rp.com/internal/cart"
)

// PublishMetadata carries the correlation and causation ids of the request
// that triggered the event.
type PublishMetadata struct {
	CorrelationID string
	CausationID   string
}

type CartEventsPublisher interface {
	PublishCartCheckedOut(ctx context.Context, cartID string, entries []cart.Entry, meta PublishMetadata) error
}

type SequenceRepository interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type amqpChannel interface {
	exchangeDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitPublisher struct {
	ch       amqpChannel
	seqRepo  SequenceRepository
	producer string
	now      func() time.Time
}

type PublisherOptions struct {
	Producer string
}

func NewRabbitPublisher(conn *amqp.Connection, seqRepo SequenceRepository, opts PublisherOptions) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newRabbitPublisher(ch, seqRepo, opts)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return p, nil
}

func newRabbitPublisher(ch amqpChannel, seqRepo SequenceRepository, opts PublisherOptions) (*RabbitPublisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = StorefrontProducer
	}

	return &RabbitPublisher{
		ch:       ch,
		seqRepo:  seqRepo,
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishCartCheckedOut(ctx context.Context, cartID string, entries []cart.Entry, meta PublishMetadata) error {
	seq, err := p.seqRepo.NextSequence(ctx, cartID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := BuildCartCheckedOutEvent(cartID, entries, EnvelopeOptions{
		PartitionKey:  cartID,
		Sequence:      seq,
		Producer:      p.producer,
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		OccurredAt:    p.now(),
	})

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartCheckedOut envelope: %w", err)
	}

	return p.publishJSON(ctx, CartCheckedOutRoutingKey, env.EventID, meta.CorrelationID, body)
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     messageID,
			CorrelationId: correlationID,
			Timestamp:     p.now(),
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// LogPublisher writes events to a logger. It is used when no broker is
// configured.
type LogPublisher struct {
	logger *log.Logger
}

func NewLogPublisher(logger *log.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishCartCheckedOut(ctx context.Context, cartID string, entries []cart.Entry, meta PublishMetadata) error {
	env := BuildCartCheckedOutEvent(cartID, entries, EnvelopeOptions{
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
	})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartCheckedOut envelope: %w", err)
	}
	p.logger.Printf("event %s (no broker configured): %s", CartCheckedOutRoutingKey, body)
	return nil
}
