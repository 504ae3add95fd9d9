package events

import "context"

// Publisher announces domain events. Delivery failures are returned to the
// caller, which decides whether they are fatal.
type Publisher interface {
	PublishPostPublished(ctx context.Context, e PostPublished) error
	PublishUserSignedUp(ctx context.Context, e UserSignedUp) error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishPostPublished(context.Context, PostPublished) error {
	return nil
}

func (NoopPublisher) PublishUserSignedUp(context.Context, UserSignedUp) error {
	return nil
}

var (
	_ Publisher = NoopPublisher{}
	_ Publisher = (*RabbitMQPublisher)(nil)
)
