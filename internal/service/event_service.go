package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Event types published on the family event stream.
const (
	EventAssignmentCompleted = "assignment.completed"
	EventAssignmentReversed  = "assignment.reversed"
	EventPointsDeposited     = "points.deposited"
	EventBadgeEarned         = "badge.earned"
	EventRewardClaimed       = "reward.claimed"
)

// Event is one domain event. Events are informational fan-out for UI feeds;
// delivery is best effort and never blocks or fails the triggering mutation.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	StudentID uint                   `json:"student_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	SentAt    time.Time              `json:"sent_at"`
}

// EventPublisher fans domain events out to Redis and NATS subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

type eventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	now          func() time.Time
}

// NewEventPublisher constructs the publisher. Either backend may be nil; the
// publisher simply skips the missing transport.
func NewEventPublisher(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) EventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &eventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_publisher").Logger(),
		now:          time.Now,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.SentAt.IsZero() {
		event.SentAt = p.now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to encode event")
		return
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish event to redis")
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish event to nats")
		}
	}
}

// NopPublisher discards events; used in tests and when no broker is wired.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, Event) {}
