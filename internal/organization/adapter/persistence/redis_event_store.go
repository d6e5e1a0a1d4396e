// Package persistence holds the event-store side of the organization module.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"org-registry/internal/organization/domain/model"
	"org-registry/internal/shared/eventbus"
	"org-registry/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// EventStream is the Redis Stream holding the organization audit trail.
const EventStream = "organizations:events"

const maxEventsPerRead = 1000

// RedisEventStore records organization lifecycle events in a Redis Stream.
// It subscribes to the in-process event bus and appends every event it sees,
// so the stream doubles as an audit trail and a replay source for consumers.
type RedisEventStore struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisEventStore creates a Redis-backed organization event store.
func NewRedisEventStore(client *redis.Client, log logger.Logger) *RedisEventStore {
	return &RedisEventStore{
		client: client,
		logger: log.WithComponent("redis-event-store"),
	}
}

// StoreEvent appends an organization lifecycle event to the stream.
func (r *RedisEventStore) StoreEvent(ctx context.Context, event model.OrganizationEvent) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"error": err}).Error("Failed to serialize event data")
		return err
	}
	oldData, err := json.Marshal(event.OldData)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"error": err}).Error("Failed to serialize old data")
		return err
	}

	_, err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: EventStream,
		Values: map[string]interface{}{
			"type":           event.Type,
			"organizationId": event.OrganizationID.String(),
			"slug":           event.Slug,
			"data":           data,
			"oldData":        oldData,
			"timestamp":      event.Timestamp.UnixNano(),
		},
	}).Result()
	if err != nil {
		r.logger.WithFields(map[string]interface{}{
			"error": err,
			"type":  event.Type,
			"slug":  event.Slug,
		}).Error("Failed to store event in Redis")
		return err
	}

	r.logger.WithFields(map[string]interface{}{
		"type": event.Type,
		"slug": event.Slug,
	}).Debug("Event stored in Redis stream")
	return nil
}

// GetEventsSince reads events appended after the given stream ID. An empty
// ID reads from the beginning.
func (r *RedisEventStore) GetEventsSince(ctx context.Context, lastID string) ([]model.OrganizationEvent, error) {
	if lastID == "" {
		lastID = "0"
	}

	exists, err := r.client.Exists(ctx, EventStream).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return []model.OrganizationEvent{}, nil
	}

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.client.XRead(readCtx, &redis.XReadArgs{
		Streams: []string{EventStream, lastID},
		Count:   maxEventsPerRead,
		Block:   -1,
	}).Result()
	if err != nil {
		if err == redis.Nil || err == context.DeadlineExceeded {
			return []model.OrganizationEvent{}, nil
		}
		r.logger.WithFields(map[string]interface{}{
			"error":  err,
			"lastID": lastID,
		}).Error("Failed to read events from Redis")
		return nil, err
	}

	var events []model.OrganizationEvent
	for _, streamRes := range res {
		for _, msg := range streamRes.Messages {
			event, err := parseEventMessage(msg)
			if err != nil {
				r.logger.WithFields(map[string]interface{}{
					"error":     err,
					"messageId": msg.ID,
				}).Warn("Skipping unparseable event message")
				continue
			}
			events = append(events, event)
		}
	}
	return events, nil
}

// Trim caps the stream at maxLen entries, dropping the oldest.
func (r *RedisEventStore) Trim(ctx context.Context, maxLen int64) error {
	_, err := r.client.XTrimMaxLen(ctx, EventStream, maxLen).Result()
	return err
}

// EventHandler returns a bus handler that persists every organization
// lifecycle event it receives. Wire it with eventbus.Subscribe for each of
// the organization event types.
func (r *RedisEventStore) EventHandler() eventbus.Handler {
	return func(ctx context.Context, event eventbus.Event) error {
		payload, ok := event.Data().(model.OrganizationEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload type %T", event.Data())
		}
		return r.StoreEvent(ctx, payload)
	}
}

// parseEventMessage reconstructs an OrganizationEvent from a stream message.
func parseEventMessage(msg redis.XMessage) (model.OrganizationEvent, error) {
	var event model.OrganizationEvent

	eventType, ok := msg.Values["type"].(string)
	if !ok {
		return event, fmt.Errorf("message %s has no event type", msg.ID)
	}
	event.Type = eventType

	if slug, ok := msg.Values["slug"].(string); ok {
		event.Slug = slug
	}
	if rawID, ok := msg.Values["organizationId"].(string); ok {
		if err := event.OrganizationID.UnmarshalText([]byte(rawID)); err != nil {
			return event, fmt.Errorf("message %s has invalid organization ID: %w", msg.ID, err)
		}
	}
	if raw, ok := msg.Values["data"].(string); ok && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &event.Data); err != nil {
			return event, fmt.Errorf("message %s has invalid data payload: %w", msg.ID, err)
		}
	}
	if raw, ok := msg.Values["oldData"].(string); ok && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &event.OldData); err != nil {
			return event, fmt.Errorf("message %s has invalid oldData payload: %w", msg.ID, err)
		}
	}
	if raw, ok := msg.Values["timestamp"].(string); ok {
		var nanos int64
		if _, err := fmt.Sscanf(raw, "%d", &nanos); err == nil {
			event.Timestamp = time.Unix(0, nanos)
		}
	}
	return event, nil
}
