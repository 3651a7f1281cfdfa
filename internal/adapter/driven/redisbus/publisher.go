// Package redisbus publishes partner events on a Redis pub/sub channel so
// other processes (notification fan-out, websockets) can react to links.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

// Channel is the pub/sub channel partner events are published on.
const Channel = "notifications"

// Compile-time interface satisfaction check.
var _ driven.EventPublisher = (*Publisher)(nil)

// redisPublisher is the subset of *redis.Client the publisher needs.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Message is the JSON payload written to Channel.
type Message struct {
	Type        string    `json:"type"`
	Code        string    `json:"code"`
	PartnerCode string    `json:"partnerCode"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Publisher implements driven.EventPublisher over Redis pub/sub.
type Publisher struct {
	client  redisPublisher
	channel string
}

// NewPublisher creates a Publisher writing to Channel.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, channel: Channel}
}

// Connect creates a Redis client for addr and waits for it to answer PING,
// retrying up to attempts times one second apart.
func Connect(ctx context.Context, addr, password string, attempts int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	var err error
	for i := 0; i < attempts; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("redis %s unreachable after %d attempts: %w", addr, attempts, err)
}

// Publish encodes event and publishes it.
func (p *Publisher) Publish(ctx context.Context, event model.PartnerEvent) error {
	payload, err := json.Marshal(Message{
		Type:        string(event.Type),
		Code:        event.Code,
		PartnerCode: event.PartnerCode,
		OccurredAt:  event.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal partner event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	return nil
}
