/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/harborlight/portkiosk/internal/events"
)

// NATSBridge relays events over a NATS subject.
type NATSBridge struct {
	conn     *nats.Conn
	sub      *nats.Subscription
	local    *events.Bus
	instance string
	logger   zerolog.Logger
}

// NewNATSBridge connects to the NATS server and starts relaying remote
// events into the local bus.
func NewNATSBridge(url, instance string, local *events.Bus, logger zerolog.Logger) (*NATSBridge, error) {
	conn, err := nats.Connect(url,
		nats.Name("portkiosk-"+instance),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	b := &NATSBridge{
		conn:     conn,
		local:    local,
		instance: instance,
		logger:   logger.With().Str("component", "eventbus-nats").Logger(),
	}

	sub, err := conn.Subscribe(subject, b.handle)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	b.sub = sub
	return b, nil
}

func (b *NATSBridge) handle(msg *nats.Msg) {
	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		b.logger.Warn().Err(err).Msg("dropping malformed event")
		return
	}
	if env.Origin == b.instance {
		return
	}
	b.local.Publish(env.Event)
}

func (b *NATSBridge) Publish(_ context.Context, evt events.Event) error {
	data, err := json.Marshal(envelope{Origin: b.instance, Event: evt})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to nats: %w", err)
	}
	return nil
}

func (b *NATSBridge) Close() error {
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			b.logger.Warn().Err(err).Msg("unsubscribe")
		}
	}
	b.conn.Close()
	return nil
}
