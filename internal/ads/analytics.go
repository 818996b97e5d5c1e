/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package ads

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/models"
)

// ImpressionFilter narrows the impression report.
type ImpressionFilter struct {
	CampaignID string
	KioskID    string
	Start      *time.Time
	End        *time.Time
}

// ImpressionSummary aggregates the filtered impressions.
type ImpressionSummary struct {
	TotalImpressions     int64   `json:"totalImpressions"`
	UniqueCampaigns      int64   `json:"uniqueCampaigns"`
	UniqueKiosks         int64   `json:"uniqueKiosks"`
	CompletedImpressions int64   `json:"completedImpressions"`
	SkippedImpressions   int64   `json:"skippedImpressions"`
	AvgPlayDuration      float64 `json:"avgPlayDuration"`
}

// ImpressionReport is the response of the ad analytics endpoint.
type ImpressionReport struct {
	Impressions []models.AdImpression `json:"impressions"`
	Summary     ImpressionSummary     `json:"summary"`
}

// CampaignRevenue is one row of the revenue report.
type CampaignRevenue struct {
	CampaignID       string    `json:"campaignId"`
	CampaignName     string    `json:"campaignName"`
	AdvertiserName   string    `json:"advertiserName"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	DailyRate        float64   `json:"dailyRate"`
	BillingType      string    `json:"billingType"`
	TotalImpressions int64     `json:"totalImpressions"`
	Revenue          float64   `json:"revenue"`
}

// RevenueReport sums billed revenue across campaigns.
type RevenueReport struct {
	Revenue      []CampaignRevenue `json:"revenue"`
	TotalRevenue float64           `json:"totalRevenue"`
}

// DailyImpressions is one day of a campaign's performance series.
type DailyImpressions struct {
	Date        string `json:"date"`
	Impressions int64  `json:"impressions"`
	Completed   int64  `json:"completed"`
}

// MediaImpressions is per-creative playback within a campaign.
type MediaImpressions struct {
	MediaID     string `json:"mediaId"`
	Title       string `json:"title"`
	Impressions int64  `json:"impressions"`
	Completed   int64  `json:"completed"`
}

// CampaignPerformance is the per-campaign analytics response.
type CampaignPerformance struct {
	Campaign         *models.AdCampaign `json:"campaign"`
	Statistics       ImpressionSummary  `json:"statistics"`
	FirstImpression  *time.Time         `json:"firstImpression"`
	LastImpression   *time.Time         `json:"lastImpression"`
	DailyImpressions []DailyImpressions `json:"dailyImpressions"`
	MediaImpressions []MediaImpressions `json:"mediaImpressions"`
}

// Impressions builds the filtered impression report.
func (s *Service) Impressions(ctx context.Context, filter ImpressionFilter) (*ImpressionReport, error) {
	query := s.db.WithContext(ctx).Model(&models.AdImpression{})
	if filter.CampaignID != "" {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.KioskID != "" {
		query = query.Where("kiosk_id = ?", filter.KioskID)
	}
	if filter.Start != nil {
		query = query.Where("played_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("played_at <= ?", *filter.End)
	}

	var impressions []models.AdImpression
	if err := query.Session(&gorm.Session{}).Order("played_at DESC").Limit(500).Find(&impressions).Error; err != nil {
		return nil, fmt.Errorf("list impressions: %w", err)
	}

	var summary ImpressionSummary
	err := query.Session(&gorm.Session{}).Select(
		"COUNT(*) AS total_impressions, " +
			"COUNT(DISTINCT campaign_id) AS unique_campaigns, " +
			"COUNT(DISTINCT kiosk_id) AS unique_kiosks, " +
			"SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS completed_impressions, " +
			"SUM(CASE WHEN skipped THEN 1 ELSE 0 END) AS skipped_impressions, " +
			"COALESCE(AVG(duration), 0) AS avg_play_duration",
	).Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("summarize impressions: %w", err)
	}

	return &ImpressionReport{Impressions: impressions, Summary: summary}, nil
}

// RevenueByCampaign computes billed revenue per campaign. The rate model
// lives in Revenue, so revenue is derived in code rather than SQL.
func (s *Service) RevenueByCampaign(ctx context.Context, advertiserID string) (*RevenueReport, error) {
	query := s.db.WithContext(ctx).
		Preload("Advertiser").
		Order("created_at DESC")
	if advertiserID != "" {
		query = query.Where("advertiser_id = ?", advertiserID)
	}
	var campaigns []models.AdCampaign
	if err := query.Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("list campaigns for revenue: %w", err)
	}

	report := &RevenueReport{Revenue: make([]CampaignRevenue, 0, len(campaigns))}
	for i := range campaigns {
		campaign := &campaigns[i]
		var impressions int64
		if err := s.db.WithContext(ctx).Model(&models.AdImpression{}).
			Where("campaign_id = ?", campaign.ID).Count(&impressions).Error; err != nil {
			return nil, fmt.Errorf("count campaign impressions: %w", err)
		}

		row := CampaignRevenue{
			CampaignID:       campaign.ID,
			CampaignName:     campaign.Name,
			StartDate:        campaign.StartDate,
			EndDate:          campaign.EndDate,
			DailyRate:        campaign.DailyRate,
			BillingType:      campaign.BillingType,
			TotalImpressions: impressions,
			Revenue:          Revenue(campaign.StartDate, campaign.EndDate, campaign.DailyRate, campaign.BillingType),
		}
		if campaign.Advertiser != nil {
			row.AdvertiserName = campaign.Advertiser.Name
		}
		report.Revenue = append(report.Revenue, row)
		report.TotalRevenue += row.Revenue
	}
	return report, nil
}

// Performance builds the per-campaign analytics view: aggregate playback
// stats, a 30 day daily series and a per-creative breakdown.
func (s *Service) Performance(ctx context.Context, campaignID string) (*CampaignPerformance, error) {
	campaign, err := s.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	perf := &CampaignPerformance{Campaign: campaign}

	err = s.db.WithContext(ctx).Model(&models.AdImpression{}).
		Where("campaign_id = ?", campaignID).
		Select(
			"COUNT(*) AS total_impressions, " +
				"COUNT(DISTINCT campaign_id) AS unique_campaigns, " +
				"COUNT(DISTINCT kiosk_id) AS unique_kiosks, " +
				"SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS completed_impressions, " +
				"SUM(CASE WHEN skipped THEN 1 ELSE 0 END) AS skipped_impressions, " +
				"COALESCE(AVG(duration), 0) AS avg_play_duration",
		).Scan(&perf.Statistics).Error
	if err != nil {
		return nil, fmt.Errorf("summarize campaign impressions: %w", err)
	}

	var bounds struct {
		First *time.Time
		Last  *time.Time
	}
	err = s.db.WithContext(ctx).Model(&models.AdImpression{}).
		Where("campaign_id = ?", campaignID).
		Select("MIN(played_at) AS first, MAX(played_at) AS last").
		Scan(&bounds).Error
	if err != nil {
		return nil, fmt.Errorf("impression bounds: %w", err)
	}
	perf.FirstImpression = bounds.First
	perf.LastImpression = bounds.Last

	err = s.db.WithContext(ctx).Model(&models.AdImpression{}).
		Where("campaign_id = ?", campaignID).
		Select("DATE(played_at) AS date, COUNT(*) AS impressions, SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS completed").
		Group("DATE(played_at)").
		Order("date DESC").
		Limit(30).
		Scan(&perf.DailyImpressions).Error
	if err != nil {
		return nil, fmt.Errorf("daily impressions: %w", err)
	}

	err = s.db.WithContext(ctx).
		Table("ad_media").
		Select("ad_media.id AS media_id, ad_media.title, COUNT(ad_impressions.id) AS impressions, SUM(CASE WHEN ad_impressions.completed THEN 1 ELSE 0 END) AS completed").
		Joins("LEFT JOIN ad_impressions ON ad_impressions.media_id = ad_media.id").
		Where("ad_media.campaign_id = ?", campaignID).
		Group("ad_media.id, ad_media.title").
		Order("impressions DESC").
		Scan(&perf.MediaImpressions).Error
	if err != nil {
		return nil, fmt.Errorf("media impressions: %w", err)
	}

	return perf, nil
}
