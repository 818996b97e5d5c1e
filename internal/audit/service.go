/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package audit persists a trail of admin actions and kiosk-visible changes.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/models"
)

// Service subscribes to the event bus and stores one audit row per event.
type Service struct {
	db     *gorm.DB
	bus    *events.Bus
	logger zerolog.Logger
}

func NewService(db *gorm.DB, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		bus:    bus,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Start consumes bus events until ctx is cancelled. Impressions are not
// audited, they have their own table.
func (s *Service) Start(ctx context.Context) {
	id, sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(id)

	s.logger.Info().Msg("audit service started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("audit service stopping")
			return
		case evt, ok := <-sub:
			if !ok {
				return
			}
			if evt.Type == events.TypeImpressionCreated {
				continue
			}
			s.recordEvent(ctx, evt)
		}
	}
}

func (s *Service) recordEvent(ctx context.Context, evt events.Event) {
	entry := models.NewAuditLog(evt.Type)
	entry.CreatedAt = evt.At

	details := make(map[string]any)
	for k, v := range evt.Payload {
		switch k {
		case "actorId":
			entry.ActorID, _ = v.(string)
		case "actorEmail":
			entry.ActorEmail, _ = v.(string)
		case "scheduleId", "mediaId", "campaignId", "advertiserId":
			entry.ResourceID, _ = v.(string)
		default:
			details[k] = v
		}
	}
	if len(details) > 0 {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = string(data)
		}
	}

	if err := s.Log(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", evt.Type).Msg("failed to record audit entry")
	}
}

// Log stores an entry directly, bypassing the bus. Used for logins.
func (s *Service) Log(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// QueryFilters narrows an audit log query.
type QueryFilters struct {
	Action     string
	ActorID    string
	ResourceID string
	Since      *time.Time
	Until      *time.Time
	Limit      int
	Offset     int
}

// Query returns matching entries newest first, plus the unpaginated total.
func (s *Service) Query(ctx context.Context, filters QueryFilters) ([]models.AuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.ActorID != "" {
		query = query.Where("actor_id = ?", filters.ActorID)
	}
	if filters.ResourceID != "" {
		query = query.Where("resource_id = ?", filters.ResourceID)
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("created_at <= ?", *filters.Until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	query = query.Session(&gorm.Session{}).Limit(limit)
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
