package cacheinv

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"clinic-erp-be/internal/pkg/logger"
)

const invalidateTopic = "cache.invalidate"

// invalidateMessage is the wire shape on the in-process bus.
type invalidateMessage struct {
	EntityType string `json:"entity_type"`
	Cascade    bool   `json:"cascade"`
}

// Invalidator publishes fire-and-forget invalidation signals after
// successful writes. It never manages cache contents itself.
type Invalidator struct {
	publisher message.Publisher
	log       logger.ILogger
}

func NewInvalidator(publisher message.Publisher, log logger.ILogger) *Invalidator {
	return &Invalidator{publisher: publisher, log: log}
}

// InvalidateForEntity signals that read caches for entityType are stale.
// Errors are logged and swallowed: a stale read cache is an accepted window,
// a failed write response is not.
func (i *Invalidator) InvalidateForEntity(ctx context.Context, entityType string, cascade bool) {
	raw, err := json.Marshal(invalidateMessage{EntityType: entityType, Cascade: cascade})
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), raw)
	msg.SetContext(ctx)
	if err := i.publisher.Publish(invalidateTopic, msg); err != nil {
		i.log.Warn("cacheinv", "invalidation publish failed", map[string]interface{}{
			"entity_type": entityType, "error": err.Error(),
		})
	}
}

// CascadeSource tells the subscriber which other entity types go stale
// alongside a written one.
type CascadeSource interface {
	CascadeTargets(entityType string) []string
}

// Subscriber drains invalidation signals and clears the read cache.
type Subscriber struct {
	subscriber message.Subscriber
	readCache  *ReadCache
	cascades   CascadeSource
	log        logger.ILogger
}

func NewSubscriber(subscriber message.Subscriber, readCache *ReadCache, cascades CascadeSource, log logger.ILogger) *Subscriber {
	return &Subscriber{
		subscriber: subscriber,
		readCache:  readCache,
		cascades:   cascades,
		log:        log,
	}
}

// Run consumes until ctx is cancelled. Meant for one background goroutine.
func (s *Subscriber) Run(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, invalidateTopic)
	if err != nil {
		return err
	}
	for msg := range messages {
		s.handle(ctx, msg)
		msg.Ack()
	}
	return nil
}

func (s *Subscriber) handle(ctx context.Context, msg *message.Message) {
	var payload invalidateMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Warn("cacheinv", "bad invalidation message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.readCache.DropEntity(ctx, payload.EntityType)
	if !payload.Cascade || s.cascades == nil {
		return
	}
	for _, target := range s.cascades.CascadeTargets(payload.EntityType) {
		s.readCache.DropEntity(ctx, target)
	}
}
