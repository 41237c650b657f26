package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/demobank/microservices/shared/audit"
)

// Publisher appends events to Redis streams. Event timestamps come from the
// same clock that stamps the entities.
type Publisher struct {
	client *redis.Client
	clock  audit.Clock
}

// NewPublisher uses audit.SystemClock when clock is nil.
func NewPublisher(client *redis.Client, clock audit.Clock) *Publisher {
	if clock == nil {
		clock = audit.SystemClock{}
	}
	return &Publisher{client: client, clock: clock}
}

// NewEvent wraps data in an envelope with a fresh ID.
func NewEvent(eventType, actor string, at time.Time, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: at,
		Actor:     actor,
		Data:      data,
	}
}

func (p *Publisher) Publish(ctx context.Context, stream, eventType, actor string, data any) error {
	event := NewEvent(eventType, actor, p.clock.Now(), data)

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"event": eventJSON,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
