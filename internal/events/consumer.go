package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handlers holds one function per event type. A nil handler acks and drops
// events of its type.
type Handlers struct {
	PostPublished func(ctx context.Context, e PostPublished) error
	UserSignedUp  func(ctx context.Context, e UserSignedUp) error
}

// Consumer reads the mail queue one delivery at a time.
type Consumer struct {
	ch       *amqp.Channel
	handlers Handlers
	logger   *slog.Logger
	timeout  time.Duration
	tag      string
}

func NewConsumer(ch *amqp.Channel, tag string, handlers Handlers, logger *slog.Logger) *Consumer {
	return &Consumer{ch: ch, handlers: handlers, logger: logger, timeout: time.Minute, tag: tag}
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	if err := DeclareTopology(c.ch); err != nil {
		return err
	}
	if err := c.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := c.ch.Consume(QueueName, c.tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("consumer started", "queue", QueueName, "tag", c.tag)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.process(ctx, d)
		}
	}
}

// process acks handled deliveries, drops undecodable ones and requeues a
// failed delivery once. A redelivered message that fails again is dropped.
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	eventType, err := EventType(d.Body)
	if err != nil {
		c.logger.Error("invalid event body", "error", err)
		_ = d.Nack(false, false)
		return
	}

	hctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.dispatch(hctx, eventType, d.Body); err != nil {
		c.logger.Error("event handler failed",
			"type", eventType,
			"redelivered", d.Redelivered,
			"error", err,
		)
		_ = d.Nack(false, !d.Redelivered && !errors.Is(err, errMalformed))
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("failed to ack", "error", err)
	}
}

var errMalformed = errors.New("malformed event")

func (c *Consumer) dispatch(ctx context.Context, eventType string, body []byte) error {
	switch {
	case eventType == TypePostPublished && c.handlers.PostPublished != nil:
		e, err := Decode(body)
		if err != nil {
			return fmt.Errorf("%w: %w", errMalformed, err)
		}
		return c.handlers.PostPublished(ctx, e)
	case eventType == TypeUserSignedUp && c.handlers.UserSignedUp != nil:
		e, err := DecodeUserSignedUp(body)
		if err != nil {
			return fmt.Errorf("%w: %w", errMalformed, err)
		}
		return c.handlers.UserSignedUp(ctx, e)
	default:
		c.logger.Debug("ignoring event type", "type", eventType)
		return nil
	}
}
