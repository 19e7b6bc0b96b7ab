package services

import (
	"time"

	"github.com/rs/zerolog"
)

// Routing keys of the activity events emitted after successful writes.
const (
	ActivitySwipeMatched = "swipe.matched"
	ActivityMessageSent  = "message.sent"
	ActivityEventCreated = "event.created"
)

// ActivityPublisher forwards domain activity to downstream consumers.
type ActivityPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// Activity is the envelope published for every domain event.
type Activity struct {
	Type       string            `json:"type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]string `json:"data"`
}

// publishActivity sends an activity if a publisher is configured. Delivery
// problems are logged and never fail the caller.
func publishActivity(p ActivityPublisher, logger zerolog.Logger, kind string, data map[string]string) {
	if p == nil {
		return
	}
	activity := Activity{Type: kind, OccurredAt: time.Now().UTC(), Data: data}
	if err := p.Publish(kind, activity); err != nil {
		logger.Warn().Err(err).Str("activity", kind).Msg("Failed to publish activity")
	}
}
