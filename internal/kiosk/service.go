/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package kiosk assembles the public display payload: today's departures,
// the composed media playlist, playback state and display settings.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborlight/portkiosk/internal/ads"
	"github.com/harborlight/portkiosk/internal/cache"
	"github.com/harborlight/portkiosk/internal/models"
	"github.com/harborlight/portkiosk/internal/playlist"
	"github.com/harborlight/portkiosk/internal/schedule"
	"github.com/harborlight/portkiosk/internal/settings"
)

// ErrNotFound is returned for missing playlist items.
var ErrNotFound = errors.New("not found")

// Payload is everything a kiosk needs to render.
type Payload struct {
	Schedules    []schedule.BoardEntry `json:"schedules"`
	Playlist     []playlist.Entry      `json:"playlist"`
	VideoControl *models.VideoControl  `json:"videoControl"`
	Settings     *settings.Settings    `json:"settings"`
	GeneratedAt  time.Time             `json:"generatedAt"`
}

type Service struct {
	db        *gorm.DB
	schedules *schedule.Service
	settings  *settings.Service
	ads       *ads.Service
	composer  *playlist.Composer
	cache     *cache.Cache
	logger    zerolog.Logger
}

func NewService(db *gorm.DB, schedules *schedule.Service, settingsSvc *settings.Service, adsSvc *ads.Service, composer *playlist.Composer, c *cache.Cache, logger zerolog.Logger) *Service {
	return &Service{
		db:        db,
		schedules: schedules,
		settings:  settingsSvc,
		ads:       adsSvc,
		composer:  composer,
		cache:     c,
		logger:    logger.With().Str("component", "kiosk").Logger(),
	}
}

// Build assembles the kiosk payload. totalVideosPlayed comes from the kiosk
// and drives interval ad pacing.
func (s *Service) Build(ctx context.Context, kioskID string, now time.Time, totalVideosPlayed int) (*Payload, error) {
	cfg, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	board, err := s.schedules.Board(ctx, now, cfg.BoardingTime, cfg.LastCallTime)
	if err != nil {
		return nil, err
	}

	base, err := s.enabledMedia(ctx)
	if err != nil {
		return nil, err
	}

	campaigns, err := s.activeCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.composer.Compose(ctx, base, campaigns, now, kioskID, totalVideosPlayed)
	if err != nil {
		return nil, fmt.Errorf("compose playlist: %w", err)
	}

	control, err := s.VideoControl(ctx, kioskID)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Schedules:    board,
		Playlist:     entries,
		VideoControl: control,
		Settings:     cfg,
		GeneratedAt:  now,
	}, nil
}

func (s *Service) loadSettings(ctx context.Context) (*settings.Settings, error) {
	var cfg settings.Settings
	if s.cache.Get(ctx, cache.KeySettings, &cfg) {
		return &cfg, nil
	}
	loaded, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cache.KeySettings, loaded, cache.DefaultTTL)
	return loaded, nil
}

func (s *Service) enabledMedia(ctx context.Context) ([]models.MediaItem, error) {
	var items []models.MediaItem
	if s.cache.Get(ctx, cache.KeyMediaPlaylist, &items) {
		return items, nil
	}
	if err := s.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("sort_order ASC, created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load media playlist: %w", err)
	}
	s.cache.Set(ctx, cache.KeyMediaPlaylist, items, cache.DefaultTTL)
	return items, nil
}

func (s *Service) activeCampaigns(ctx context.Context) ([]models.AdCampaign, error) {
	var campaigns []models.AdCampaign
	if s.cache.Get(ctx, cache.KeyCampaigns, &campaigns) {
		return campaigns, nil
	}
	campaigns, err := s.ads.ActiveCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cache.KeyCampaigns, campaigns, cache.DefaultTTL)
	return campaigns, nil
}

// VideoControl returns the playback row for a kiosk, creating it on first
// contact.
func (s *Service) VideoControl(ctx context.Context, kioskID string) (*models.VideoControl, error) {
	var control models.VideoControl
	err := s.db.WithContext(ctx).First(&control, "kiosk_id = ?", kioskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh := models.NewVideoControl(kioskID)
		if err := s.db.WithContext(ctx).Create(fresh).Error; err != nil {
			return nil, fmt.Errorf("create video control: %w", err)
		}
		return fresh, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load video control: %w", err)
	}
	return &control, nil
}

// UpdateVideoControl upserts the playback state reported by a kiosk. Last
// writer wins.
func (s *Service) UpdateVideoControl(ctx context.Context, control *models.VideoControl) (*models.VideoControl, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kiosk_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_index", "is_playing", "is_looping", "volume", "updated_at"}),
	}).Create(control).Error
	if err != nil {
		return nil, fmt.Errorf("upsert video control: %w", err)
	}
	return s.VideoControl(ctx, control.KioskID)
}

// Base playlist management

func (s *Service) ListMedia(ctx context.Context) ([]models.MediaItem, error) {
	var items []models.MediaItem
	if err := s.db.WithContext(ctx).
		Order("sort_order ASC, created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return items, nil
}

func (s *Service) GetMedia(ctx context.Context, id string) (*models.MediaItem, error) {
	var item models.MediaItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get media: %w", err)
	}
	return &item, nil
}

func (s *Service) CreateMedia(ctx context.Context, item *models.MediaItem) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create media: %w", err)
	}
	s.invalidate(ctx)
	s.logger.Info().Str("media_id", item.ID).Str("title", item.Title).Msg("playlist item created")
	return nil
}

func (s *Service) UpdateMedia(ctx context.Context, item *models.MediaItem) error {
	result := s.db.WithContext(ctx).Model(&models.MediaItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"title":      item.Title,
			"type":       item.Type,
			"url":        item.URL,
			"duration":   item.Duration,
			"sort_order": item.SortOrder,
			"enabled":    item.Enabled,
		})
	if result.Error != nil {
		return fmt.Errorf("update media: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) DeleteMedia(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.MediaItem{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete media: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx)
	return nil
}

// ReorderMedia assigns sort order following the given ID sequence.
func (s *Service) ReorderMedia(ctx context.Context, orderedIDs []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			result := tx.Model(&models.MediaItem{}).
				Where("id = ?", id).
				Update("sort_order", i)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("unknown media item %s: %w", id, ErrNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reorder media: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// InvalidateCampaigns clears the cached campaign list after admin changes.
func (s *Service) InvalidateCampaigns(ctx context.Context) {
	s.cache.Invalidate(ctx, cache.KeyCampaigns)
}

// InvalidateSettings clears the cached settings after admin changes.
func (s *Service) InvalidateSettings(ctx context.Context) {
	s.cache.Invalidate(ctx, cache.KeySettings)
}

func (s *Service) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, cache.KeyMediaPlaylist)
}
