/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// Advertiser account statuses.
const (
	AdvertiserActive   = "active"
	AdvertiserInactive = "inactive"
)

// Campaign lifecycle statuses.
const (
	CampaignPending   = "pending"
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
	CampaignExpired   = "expired"
	CampaignRejected  = "rejected"
)

// Campaign display types.
const (
	DisplayInterstitial = "interstitial"
	DisplayScheduled    = "scheduled"
	DisplayMixed        = "mixed"
)

// Campaign frequency types.
const (
	FrequencyInterval = "interval"
	FrequencyPerHour  = "per_hour"
	FrequencyPerDay   = "per_day"
)

// Campaign billing types.
const (
	BillingDaily   = "daily"
	BillingMonthly = "monthly"
)

// Advertiser is a business buying screen time on the kiosk.
type Advertiser struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Company     string    `json:"company"`
	Notes       string    `json:"notes"`
	Status      string    `gorm:"default:active" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Campaigns []AdCampaign `gorm:"foreignKey:AdvertiserID" json:"campaigns,omitempty"`
}

func (Advertiser) TableName() string {
	return "advertisers"
}

func NewAdvertiser(name, contactName, email string) *Advertiser {
	return &Advertiser{
		ID:          uuid.NewString(),
		Name:        name,
		ContactName: contactName,
		Email:       email,
		Status:      AdvertiserActive,
	}
}

// AdCampaign is a run of ad media with a flight window, a display mode and a
// frequency rule. DailyRate and BillingType drive the revenue report.
// InterstitialInterval overrides the server-wide ad spacing when the
// frequency value is unset.
type AdCampaign struct {
	ID                   string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AdvertiserID         string    `gorm:"index;not null" json:"advertiserId"`
	Name                 string    `gorm:"not null" json:"name"`
	Description          string    `json:"description"`
	Status               string    `gorm:"default:pending" json:"status"`
	StartDate            time.Time `json:"startDate"`
	EndDate              time.Time `json:"endDate"`
	DisplayType          string    `gorm:"default:interstitial" json:"displayType"`
	FrequencyType        string    `gorm:"default:interval" json:"frequencyType"`
	FrequencyValue       int       `gorm:"default:0" json:"frequencyValue"`
	InterstitialInterval int       `gorm:"default:0" json:"interstitialInterval"`
	Priority             int       `gorm:"default:0" json:"priority"`
	DailyRate            float64   `gorm:"default:0" json:"dailyRate"`
	MonthlyRate          float64   `gorm:"default:0" json:"monthlyRate"`
	BillingType          string    `gorm:"default:daily" json:"billingType"`
	TotalCost            float64   `gorm:"default:0" json:"totalCost"`
	Notes                string    `json:"notes"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`

	Advertiser *Advertiser  `gorm:"foreignKey:AdvertiserID" json:"advertiser,omitempty"`
	Media      []AdMedia    `gorm:"foreignKey:CampaignID" json:"media,omitempty"`
	Schedules  []AdSchedule `gorm:"foreignKey:CampaignID" json:"schedules,omitempty"`
}

func (AdCampaign) TableName() string {
	return "ad_campaigns"
}

func NewAdCampaign(advertiserID, name string, start, end time.Time) *AdCampaign {
	return &AdCampaign{
		ID:            uuid.NewString(),
		AdvertiserID:  advertiserID,
		Name:          name,
		Status:        CampaignPending,
		StartDate:     start,
		EndDate:       end,
		DisplayType:   DisplayInterstitial,
		FrequencyType: FrequencyInterval,
		BillingType:   BillingDaily,
	}
}

// AdMedia is one creative belonging to a campaign.
type AdMedia struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID string    `gorm:"index;not null" json:"campaignId"`
	Title      string    `json:"title"`
	Type       string    `gorm:"not null" json:"type"`
	URL        string    `gorm:"not null" json:"url"`
	Duration   int       `gorm:"default:0" json:"duration"`
	SortOrder  int       `gorm:"default:0" json:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (AdMedia) TableName() string {
	return "ad_media"
}

func NewAdMedia(campaignID, title, mediaType, url string, duration int) *AdMedia {
	return &AdMedia{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		Title:      title,
		Type:       mediaType,
		URL:        url,
		Duration:   duration,
	}
}

// AdSchedule restricts a scheduled campaign to a weekday and a daypart.
// A nil DayOfWeek matches every day; the minute bounds only apply when both
// are set. DayOfWeek follows time.Weekday, Sunday is 0.
type AdSchedule struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID   string    `gorm:"index;not null" json:"campaignId"`
	DayOfWeek    *int      `json:"dayOfWeek"`
	StartMinutes *int      `json:"startMinutes"`
	EndMinutes   *int      `json:"endMinutes"`
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (AdSchedule) TableName() string {
	return "ad_schedules"
}

func NewAdSchedule(campaignID string) *AdSchedule {
	return &AdSchedule{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		Active:     true,
	}
}

// AdImpression records one playback of a campaign creative on a kiosk.
type AdImpression struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID string    `gorm:"index;not null" json:"campaignId"`
	MediaID    string    `gorm:"index" json:"mediaId"`
	KioskID    string    `gorm:"index;not null" json:"kioskId"`
	PlayedAt   time.Time `gorm:"index" json:"playedAt"`
	Duration   int       `gorm:"default:0" json:"duration"`
	Completed  bool      `gorm:"default:false" json:"completed"`
	Skipped    bool      `gorm:"default:false" json:"skipped"`
	CreatedAt  time.Time `json:"createdAt"`

	Campaign *AdCampaign `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"campaign,omitempty"`
}

func (AdImpression) TableName() string {
	return "ad_impressions"
}

func NewAdImpression(campaignID, mediaID, kioskID string, playedAt time.Time) *AdImpression {
	return &AdImpression{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		MediaID:    mediaID,
		KioskID:    kioskID,
		PlayedAt:   playedAt,
	}
}
