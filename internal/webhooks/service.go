/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package webhooks delivers system events to external HTTP endpoints.
package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/models"
	"github.com/harborlight/portkiosk/internal/telemetry"
)

// Payload is the body sent to webhook endpoints.
type Payload struct {
	Event     string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Service fans bus events out to registered webhook targets.
type Service struct {
	db     *gorm.DB
	bus    *events.Bus
	logger zerolog.Logger
	client *http.Client
}

func NewService(db *gorm.DB, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		bus:    bus,
		logger: logger.With().Str("component", "webhooks").Logger(),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start consumes bus events until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	id, sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(id)

	s.logger.Info().Msg("webhook service started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("webhook service stopping")
			return
		case evt, ok := <-sub:
			if !ok {
				return
			}
			s.fire(ctx, evt)
		}
	}
}

// fire sends the event to every active target subscribed to its type.
func (s *Service) fire(ctx context.Context, evt events.Event) {
	var targets []models.WebhookTarget
	if err := s.db.WithContext(ctx).Where("active = ?", true).Find(&targets).Error; err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch webhook targets")
		return
	}

	for _, target := range targets {
		if !targetHandlesEvent(target, evt.Type) {
			continue
		}
		go s.deliver(ctx, target, evt.Type, evt.Payload)
	}
}

// targetHandlesEvent checks the target's event subscription list. An empty
// list subscribes to everything.
func targetHandlesEvent(target models.WebhookTarget, eventType string) bool {
	if target.Events == "" {
		return true
	}
	for _, e := range strings.Split(target.Events, ",") {
		if strings.TrimSpace(e) == eventType {
			return true
		}
	}
	return false
}

// deliver sends a single webhook request and logs the outcome.
func (s *Service) deliver(ctx context.Context, target models.WebhookTarget, eventType string, data map[string]any) {
	payload := Payload{
		Event:     eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("target", target.ID).Msg("failed to marshal webhook payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		s.logDelivery(target, eventType, 0, err.Error())
		return
	}
	setHeaders(req, eventType, body, target.Secret)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn().Err(err).Str("target", target.ID).Str("url", target.URL).Msg("webhook delivery failed")
		s.logDelivery(target, eventType, 0, err.Error())
		telemetry.WebhookDeliveries.WithLabelValues("error").Inc()
		return
	}
	defer resp.Body.Close()

	s.logDelivery(target, eventType, resp.StatusCode, "")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.logger.Debug().Str("target", target.ID).Str("event", eventType).Int("status", resp.StatusCode).Msg("webhook delivered")
		telemetry.WebhookDeliveries.WithLabelValues("ok").Inc()
	} else {
		s.logger.Warn().Str("target", target.ID).Str("event", eventType).Int("status", resp.StatusCode).Msg("webhook returned error status")
		telemetry.WebhookDeliveries.WithLabelValues("error").Inc()
	}
}

func setHeaders(req *http.Request, eventType string, body []byte, secret string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PortKiosk-Webhook/1.0")
	req.Header.Set("X-Portkiosk-Event", eventType)
	req.Header.Set("X-Portkiosk-Timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	if secret != "" {
		req.Header.Set("X-Portkiosk-Signature", signPayload(body, secret))
	}
}

// signPayload creates an HMAC-SHA256 signature over the body.
func signPayload(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

func (s *Service) logDelivery(target models.WebhookTarget, eventType string, statusCode int, errorMsg string) {
	entry := &models.WebhookLog{
		ID:         uuid.NewString(),
		TargetID:   target.ID,
		Event:      eventType,
		StatusCode: statusCode,
		Error:      errorMsg,
	}
	if err := s.db.Create(entry).Error; err != nil {
		s.logger.Error().Err(err).Msg("failed to log webhook delivery")
	}
}

// Test sends a synthetic payload to a target and reports the result.
func (s *Service) Test(ctx context.Context, target *models.WebhookTarget) error {
	payload := Payload{
		Event:     "test",
		Timestamp: time.Now().UTC(),
		Data:      map[string]any{"message": "test delivery"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	setHeaders(req, "test", body, target.Secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
