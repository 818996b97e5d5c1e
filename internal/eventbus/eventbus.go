/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus bridges the in-process event bus across instances so a
// change made through any admin instance refreshes every connected kiosk.
package eventbus

import (
	"context"

	"github.com/harborlight/portkiosk/internal/events"
)

// Bridge forwards locally published events to other instances and injects
// remote events into the local bus.
type Bridge interface {
	// Publish sends the event to the other instances.
	Publish(ctx context.Context, evt events.Event) error
	// Close tears down the connection.
	Close() error
}

// envelope is the wire format shared by the redis and nats bridges. Origin
// lets an instance skip its own messages.
type envelope struct {
	Origin string       `json:"origin"`
	Event  events.Event `json:"event"`
}

const subject = "portkiosk.events"
