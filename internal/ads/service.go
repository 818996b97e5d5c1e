/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package ads manages advertisers, campaigns, creatives and impressions.
package ads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/models"
	"github.com/harborlight/portkiosk/internal/telemetry"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrHasCampaigns = errors.New("advertiser still has campaigns")
)

type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "ads").Logger(),
	}
}

// Advertisers

func (s *Service) ListAdvertisers(ctx context.Context) ([]models.Advertiser, error) {
	var advertisers []models.Advertiser
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&advertisers).Error; err != nil {
		return nil, fmt.Errorf("list advertisers: %w", err)
	}
	return advertisers, nil
}

func (s *Service) GetAdvertiser(ctx context.Context, id string) (*models.Advertiser, error) {
	var advertiser models.Advertiser
	if err := s.db.WithContext(ctx).Preload("Campaigns").First(&advertiser, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get advertiser: %w", err)
	}
	return &advertiser, nil
}

func (s *Service) CreateAdvertiser(ctx context.Context, advertiser *models.Advertiser) error {
	if err := s.db.WithContext(ctx).Create(advertiser).Error; err != nil {
		return fmt.Errorf("create advertiser: %w", err)
	}
	s.logger.Info().Str("advertiser_id", advertiser.ID).Str("name", advertiser.Name).Msg("advertiser created")
	return nil
}

func (s *Service) UpdateAdvertiser(ctx context.Context, advertiser *models.Advertiser) error {
	result := s.db.WithContext(ctx).Model(&models.Advertiser{}).
		Where("id = ?", advertiser.ID).
		Updates(map[string]any{
			"name":         advertiser.Name,
			"contact_name": advertiser.ContactName,
			"email":        advertiser.Email,
			"phone":        advertiser.Phone,
			"company":      advertiser.Company,
			"notes":        advertiser.Notes,
			"status":       advertiser.Status,
		})
	if result.Error != nil {
		return fmt.Errorf("update advertiser: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAdvertiser refuses to delete an advertiser that still owns
// campaigns so impression history stays attributable.
func (s *Service) DeleteAdvertiser(ctx context.Context, id string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AdCampaign{}).
		Where("advertiser_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("count campaigns: %w", err)
	}
	if count > 0 {
		return ErrHasCampaigns
	}
	result := s.db.WithContext(ctx).Delete(&models.Advertiser{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete advertiser: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Campaigns

// ListCampaigns returns campaigns with relations, optionally filtered by
// status and advertiser.
func (s *Service) ListCampaigns(ctx context.Context, status, advertiserID string) ([]models.AdCampaign, error) {
	query := s.db.WithContext(ctx).
		Preload("Advertiser").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Schedules").
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if advertiserID != "" {
		query = query.Where("advertiser_id = ?", advertiserID)
	}

	var campaigns []models.AdCampaign
	if err := query.Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *Service) GetCampaign(ctx context.Context, id string) (*models.AdCampaign, error) {
	var campaign models.AdCampaign
	err := s.db.WithContext(ctx).
		Preload("Advertiser").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Schedules").
		First(&campaign, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &campaign, nil
}

func (s *Service) CreateCampaign(ctx context.Context, campaign *models.AdCampaign) error {
	var advertiser models.Advertiser
	if err := s.db.WithContext(ctx).Select("id").First(&advertiser, "id = ?", campaign.AdvertiserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("check advertiser: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	s.logger.Info().Str("campaign_id", campaign.ID).Str("name", campaign.Name).Msg("campaign created")
	return nil
}

func (s *Service) UpdateCampaign(ctx context.Context, campaign *models.AdCampaign) error {
	result := s.db.WithContext(ctx).Model(&models.AdCampaign{}).
		Where("id = ?", campaign.ID).
		Updates(map[string]any{
			"name":                  campaign.Name,
			"description":           campaign.Description,
			"start_date":            campaign.StartDate,
			"end_date":              campaign.EndDate,
			"display_type":          campaign.DisplayType,
			"frequency_type":        campaign.FrequencyType,
			"frequency_value":       campaign.FrequencyValue,
			"interstitial_interval": campaign.InterstitialInterval,
			"priority":              campaign.Priority,
			"daily_rate":            campaign.DailyRate,
			"monthly_rate":          campaign.MonthlyRate,
			"billing_type":          campaign.BillingType,
			"total_cost":            campaign.TotalCost,
			"notes":                 campaign.Notes,
		})
	if result.Error != nil {
		return fmt.Errorf("update campaign: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteCampaign(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.AdCampaign{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("delete campaign: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&models.AdMedia{}, "campaign_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete campaign media: %w", err)
		}
		if err := tx.Delete(&models.AdSchedule{}, "campaign_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete campaign schedules: %w", err)
		}
		return nil
	})
}

func (s *Service) setCampaignStatus(ctx context.Context, id, status string) (*models.AdCampaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.AdCampaign{}).
		Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("set campaign status: %w", err)
	}
	campaign.Status = status
	s.logger.Info().Str("campaign_id", id).Str("status", status).Msg("campaign status changed")
	return campaign, nil
}

// Pause stops a campaign from serving until it is resumed.
func (s *Service) Pause(ctx context.Context, id string) (*models.AdCampaign, error) {
	return s.setCampaignStatus(ctx, id, models.CampaignPaused)
}

// Resume re-derives the status from the flight window so a paused
// campaign comes back as pending, active or expired as appropriate.
func (s *Service) Resume(ctx context.Context, id string, now time.Time) (*models.AdCampaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	campaign.Status = models.CampaignActive
	return s.setCampaignStatus(ctx, id, DeriveStatus(campaign, now))
}

// Approve moves a submitted campaign into rotation, or holds it pending
// until its start date.
func (s *Service) Approve(ctx context.Context, id string, now time.Time) (*models.AdCampaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	campaign.Status = models.CampaignActive
	return s.setCampaignStatus(ctx, id, DeriveStatus(campaign, now))
}

func (s *Service) Reject(ctx context.Context, id string) (*models.AdCampaign, error) {
	return s.setCampaignStatus(ctx, id, models.CampaignRejected)
}

// ActiveCampaigns returns the campaigns the composer considers, with
// creatives and schedule rules attached.
func (s *Service) ActiveCampaigns(ctx context.Context) ([]models.AdCampaign, error) {
	return s.ListCampaigns(ctx, models.CampaignActive, "")
}

// SweepStatuses re-derives the status of every campaign still in play so
// pending flights start and running ones expire. Rejected campaigns stay
// rejected.
func (s *Service) SweepStatuses(ctx context.Context, now time.Time) error {
	var campaigns []models.AdCampaign
	if err := s.db.WithContext(ctx).
		Where("status <> ?", models.CampaignRejected).
		Find(&campaigns).Error; err != nil {
		return fmt.Errorf("load campaigns for sweep: %w", err)
	}

	for i := range campaigns {
		campaign := &campaigns[i]
		derived := DeriveStatus(campaign, now)
		if derived == campaign.Status {
			continue
		}
		if err := s.db.WithContext(ctx).Model(&models.AdCampaign{}).
			Where("id = ?", campaign.ID).Update("status", derived).Error; err != nil {
			return fmt.Errorf("sweep campaign %s: %w", campaign.ID, err)
		}
		s.logger.Info().
			Str("campaign_id", campaign.ID).
			Str("from", campaign.Status).
			Str("to", derived).
			Msg("campaign status rolled")
	}
	return nil
}

// Campaign media

func (s *Service) AddCampaignMedia(ctx context.Context, media *models.AdMedia) error {
	if _, err := s.GetCampaign(ctx, media.CampaignID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(media).Error; err != nil {
		return fmt.Errorf("add campaign media: %w", err)
	}
	return nil
}

func (s *Service) DeleteCampaignMedia(ctx context.Context, campaignID, mediaID string) error {
	result := s.db.WithContext(ctx).
		Delete(&models.AdMedia{}, "id = ? AND campaign_id = ?", mediaID, campaignID)
	if result.Error != nil {
		return fmt.Errorf("delete campaign media: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Campaign schedules

func (s *Service) AddCampaignSchedule(ctx context.Context, schedule *models.AdSchedule) error {
	if _, err := s.GetCampaign(ctx, schedule.CampaignID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return fmt.Errorf("add campaign schedule: %w", err)
	}
	return nil
}

func (s *Service) UpdateCampaignSchedule(ctx context.Context, schedule *models.AdSchedule) error {
	result := s.db.WithContext(ctx).Model(&models.AdSchedule{}).
		Where("id = ? AND campaign_id = ?", schedule.ID, schedule.CampaignID).
		Updates(map[string]any{
			"day_of_week":   schedule.DayOfWeek,
			"start_minutes": schedule.StartMinutes,
			"end_minutes":   schedule.EndMinutes,
			"active":        schedule.Active,
		})
	if result.Error != nil {
		return fmt.Errorf("update campaign schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteCampaignSchedule(ctx context.Context, campaignID, scheduleID string) error {
	result := s.db.WithContext(ctx).
		Delete(&models.AdSchedule{}, "id = ? AND campaign_id = ?", scheduleID, campaignID)
	if result.Error != nil {
		return fmt.Errorf("delete campaign schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Impressions

// RecordImpression stores one playback report from a kiosk. The campaign
// must exist; a dangling campaign ID means the kiosk played a stale
// playlist.
func (s *Service) RecordImpression(ctx context.Context, impression *models.AdImpression) error {
	var campaign models.AdCampaign
	if err := s.db.WithContext(ctx).Select("id").First(&campaign, "id = ?", impression.CampaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("check campaign: %w", err)
	}
	if impression.PlayedAt.IsZero() {
		impression.PlayedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(impression).Error; err != nil {
		return fmt.Errorf("record impression: %w", err)
	}
	telemetry.ImpressionsRecorded.WithLabelValues(impression.KioskID).Inc()
	return nil
}

// CountSince reports impressions for a campaign on a kiosk since a point in
// time. It backs the composer's frequency gate.
func (s *Service) CountSince(ctx context.Context, campaignID, kioskID string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AdImpression{}).
		Where("campaign_id = ? AND kiosk_id = ? AND played_at >= ?", campaignID, kioskID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count impressions: %w", err)
	}
	return count, nil
}
