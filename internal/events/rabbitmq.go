package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "blog.events"
	QueueName    = "mail.notifications"
)

// DeclareTopology declares the durable topic exchange, the mail queue and
// one binding per event type. Both the publisher and the worker call it so
// either can start first.
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	for _, key := range []string{TypePostPublished, TypeUserSignedUp} {
		if err := ch.QueueBind(QueueName, key, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", key, err)
		}
	}
	return nil
}

// EventType reads the type field of a delivery body.
func EventType(body []byte) (string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return "", fmt.Errorf("decode event: %w", err)
	}
	return head.Type, nil
}

// Decode parses a delivery body into a PostPublished event.
func Decode(body []byte) (PostPublished, error) {
	var e PostPublished
	if err := json.Unmarshal(body, &e); err != nil {
		return PostPublished{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}

func DecodeUserSignedUp(body []byte) (UserSignedUp, error) {
	var e UserSignedUp
	if err := json.Unmarshal(body, &e); err != nil {
		return UserSignedUp{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}

type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	once    sync.Once
}

func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := DeclareTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitMQPublisher{conn: conn, channel: ch}, nil
}

func (p *RabbitMQPublisher) PublishPostPublished(ctx context.Context, e PostPublished) error {
	return p.publish(ctx, e.Type, e.Timestamp, e)
}

func (p *RabbitMQPublisher) PublishUserSignedUp(ctx context.Context, e UserSignedUp) error {
	return p.publish(ctx, e.Type, e.Timestamp, e)
}

// publish sends e with its type as the routing key.
func (p *RabbitMQPublisher) publish(ctx context.Context, eventType string, ts time.Time, e any) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return errors.New("publisher closed")
	}
	err = p.channel.PublishWithContext(ctx, ExchangeName, eventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Timestamp:    ts,
		Type:         eventType,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Ping reports whether the broker connection is still open.
func (p *RabbitMQPublisher) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection closed")
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	var err error
	p.once.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.channel != nil {
			err = p.channel.Close()
			p.channel = nil
		}
		if p.conn != nil {
			if closeErr := p.conn.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
			p.conn = nil
		}
	})
	return err
}
