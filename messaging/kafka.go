package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"order-taking-system/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by order id, so events of one order
// land on one partition and keep their order.
type KafkaPublisher struct {
	events        messageWriter
	notifications messageWriter
	now           func() time.Time
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaPublisher creates a publisher for the events and notifications topics.
func NewKafkaPublisher(brokers []string, eventsTopic, notificationsTopic string) *KafkaPublisher {
	return &KafkaPublisher{
		events:        newWriter(brokers, eventsTopic),
		notifications: newWriter(brokers, notificationsTopic),
		now:           time.Now,
	}
}

func (p *KafkaPublisher) PublishEvents(ctx context.Context, events models.PlaceOrderEvents) error {
	if len(events) == 0 {
		return nil
	}
	at := p.now()
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		env, err := NewOrderEvent(e, at)
		if err != nil {
			return err
		}
		msg, err := jsonMessage(env.OrderID, env, at)
		if err != nil {
			return err
		}
		msg.Headers = []kafka.Header{{Key: "event_type", Value: []byte(env.EventType)}}
		msgs = append(msgs, msg)
	}
	if err := p.events.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish %d events: %w", len(msgs), err)
	}
	return nil
}

func (p *KafkaPublisher) SendAcknowledgment(ctx context.Context, ack models.OrderAcknowledgment) error {
	at := p.now()
	msg, err := jsonMessage(ack.EmailAddress.String(), Notification{
		To:         ack.EmailAddress.String(),
		Letter:     string(ack.Letter),
		OccurredAt: at.UTC(),
	}, at)
	if err != nil {
		return err
	}
	if err := p.notifications.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send acknowledgment: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) PublishInvoice(ctx context.Context, inv models.UnpaidInvoice, status models.InvoiceStatus) error {
	at := p.now()
	env, err := NewInvoiceEvent(inv, status, at)
	if err != nil {
		return err
	}
	msg, err := jsonMessage(env.OrderID, env, at)
	if err != nil {
		return err
	}
	msg.Headers = []kafka.Header{{Key: "event_type", Value: []byte(env.EventType)}}
	if err := p.events.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish invoice %s: %w", inv.InvoiceID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return errors.Join(p.events.Close(), p.notifications.Close())
}

func jsonMessage(key string, payload any, at time.Time) (kafka.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}
	return kafka.Message{Key: []byte(key), Value: data, Time: at.UTC()}, nil
}
