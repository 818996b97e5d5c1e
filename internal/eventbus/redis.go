/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/harborlight/portkiosk/internal/events"
)

// RedisBridge relays events over a redis pub/sub channel.
type RedisBridge struct {
	client   *redis.Client
	pubsub   *redis.PubSub
	local    *events.Bus
	instance string
	logger   zerolog.Logger
	cancel   context.CancelFunc
}

// NewRedisBridge connects to redis and starts relaying remote events into
// the local bus.
func NewRedisBridge(ctx context.Context, addr, password string, db int, instance string, local *events.Bus, logger zerolog.Logger) (*RedisBridge, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	b := &RedisBridge{
		client:   client,
		pubsub:   client.Subscribe(runCtx, subject),
		local:    local,
		instance: instance,
		logger:   logger.With().Str("component", "eventbus-redis").Logger(),
		cancel:   cancel,
	}
	go b.receive(runCtx)
	return b, nil
}

func (b *RedisBridge) receive(ctx context.Context) {
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn().Err(err).Msg("dropping malformed event")
				continue
			}
			if env.Origin == b.instance {
				continue
			}
			b.local.Publish(env.Event)
		}
	}
}

func (b *RedisBridge) Publish(ctx context.Context, evt events.Event) error {
	data, err := json.Marshal(envelope{Origin: b.instance, Event: evt})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, subject, data).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}

func (b *RedisBridge) Close() error {
	b.cancel()
	if err := b.pubsub.Close(); err != nil {
		b.logger.Warn().Err(err).Msg("close pubsub")
	}
	return b.client.Close()
}
