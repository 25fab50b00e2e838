package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

const DefaultRelayChannel = "hostelswap:notifications"

// RedisRelay shares notifications between server instances over Redis pub/sub.
// Every instance, the publisher included, re-emits what it receives to its own connections.
type RedisRelay struct {
	client  *redis.Client
	channel string
}

func NewRedisRelay(ctx context.Context, redisURL, channel string) (*RedisRelay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &RedisRelay{client: client, channel: channel}, nil
}

func (r *RedisRelay) Publish(ctx context.Context, env Envelope) error {
	data, err := encodeEnvelope(env)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

// Run delivers relayed envelopes until ctx is cancelled
func (r *RedisRelay) Run(ctx context.Context, deliver func(Envelope)) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	log.Printf("📡 Listening for relayed notifications on %s", r.channel)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			env, err := decodeEnvelope(msg.Payload)
			if err != nil {
				log.Printf("⚠️ Dropping malformed relay message: %v", err)
				continue
			}
			deliver(env)
		}
	}
}

func (r *RedisRelay) Close() error {
	return r.client.Close()
}

func encodeEnvelope(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return data, nil
}

// decodeEnvelope keeps the payload as raw JSON so it is re-emitted unchanged
func decodeEnvelope(raw string) (Envelope, error) {
	var wire struct {
		Room    string          `json:"room"`
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Envelope{}, err
	}
	if wire.Room == "" || wire.Event == "" {
		return Envelope{}, fmt.Errorf("missing room or event")
	}
	return Envelope{Room: wire.Room, Event: wire.Event, Payload: wire.Payload}, nil
}
