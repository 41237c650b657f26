package command

import "context"

// EventPublisher is satisfied by *events.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType, actor string, data any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, string, any) error { return nil }

func orNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
