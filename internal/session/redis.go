package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const DefaultChannel = "jacare:session:events"

// RedisBus publishes through Redis so every API instance sees the event;
// Run feeds what arrives into the local hub.
type RedisBus struct {
	rdb     *redis.Client
	hub     *Hub
	log     *zap.Logger
	channel string
}

func NewRedisBus(rdb *redis.Client, hub *Hub, log *zap.Logger) *RedisBus {
	return &RedisBus{rdb: rdb, hub: hub, log: log, channel: DefaultChannel}
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("session event encode: %w", err)
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("bad session event", zap.Error(err))
				continue
			}
			_ = b.hub.Publish(ctx, ev)
		}
	}
}

var _ Publisher = (*RedisBus)(nil)
