/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package playlist composes the kiosk playlist by inserting campaign
// creatives into the base media rotation.
package playlist

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborlight/portkiosk/internal/models"
	"github.com/harborlight/portkiosk/internal/telemetry"
)

// Entry is one playlist slot sent to the kiosk. Ad entries carry the
// campaign they belong to so the kiosk can report impressions.
type Entry struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	URL          string `json:"url"`
	Duration     int    `json:"duration"`
	IsAd         bool   `json:"isAd"`
	CampaignID   string `json:"campaignId,omitempty"`
	CampaignName string `json:"campaignName,omitempty"`
	MediaID      string `json:"mediaId,omitempty"`
}

// Composer builds kiosk playlists.
type Composer struct {
	counter ImpressionCounter
	// fallbackInterval is the ad slot spacing used when an interstitial
	// campaign sets neither a frequency value nor its own interval.
	fallbackInterval int
	logger           zerolog.Logger
}

func NewComposer(counter ImpressionCounter, fallbackInterval int, logger zerolog.Logger) *Composer {
	if fallbackInterval < 1 {
		fallbackInterval = 3
	}
	return &Composer{
		counter:          counter,
		fallbackInterval: fallbackInterval,
		logger:           logger.With().Str("component", "playlist").Logger(),
	}
}

// Compose filters campaigns down to the ones eligible right now and merges
// their creatives into the base playlist.
func (c *Composer) Compose(ctx context.Context, base []models.MediaItem, campaigns []models.AdCampaign, now time.Time, kioskID string, totalVideosPlayed int) ([]Entry, error) {
	eligible := FilterEligible(campaigns, now)
	eligible = FilterBySchedule(eligible, now)

	// Interval campaigns are placed positionally during the merge; the
	// per-hour and per-day caps gate campaigns out before it.
	selected := make([]models.AdCampaign, 0, len(eligible))
	for i := range eligible {
		campaign := eligible[i]
		if campaign.FrequencyType == models.FrequencyInterval {
			selected = append(selected, campaign)
			continue
		}
		show, err := ShouldShow(ctx, c.counter, &campaign, kioskID, now, totalVideosPlayed)
		if err != nil {
			return nil, err
		}
		if show {
			selected = append(selected, campaign)
		}
	}

	telemetry.PlaylistsComposed.Inc()
	telemetry.EligibleCampaigns.Set(float64(len(selected)))

	return c.merge(base, selected), nil
}

// FilterEligible keeps campaigns that are active and inside their flight
// window at the given time.
func FilterEligible(campaigns []models.AdCampaign, now time.Time) []models.AdCampaign {
	out := make([]models.AdCampaign, 0, len(campaigns))
	for _, c := range campaigns {
		if c.Status != models.CampaignActive {
			continue
		}
		if now.Before(c.StartDate) || now.After(c.EndDate) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FilterBySchedule keeps campaigns whose day/daypart rules match now. A
// campaign with no schedule rows runs at all times. Campaigns whose display
// type is not scheduled pass even when none of their rows match.
func FilterBySchedule(campaigns []models.AdCampaign, now time.Time) []models.AdCampaign {
	weekday := int(now.Weekday())
	nowMinutes := now.Hour()*60 + now.Minute()

	out := make([]models.AdCampaign, 0, len(campaigns))
	for _, c := range campaigns {
		if len(c.Schedules) == 0 {
			out = append(out, c)
			continue
		}
		matched := false
		for _, s := range c.Schedules {
			if !s.Active {
				continue
			}
			if s.DayOfWeek != nil && *s.DayOfWeek != weekday {
				continue
			}
			if s.StartMinutes != nil && s.EndMinutes != nil {
				if nowMinutes < *s.StartMinutes || nowMinutes > *s.EndMinutes {
					continue
				}
			}
			matched = true
			break
		}
		if matched || c.DisplayType != models.DisplayScheduled {
			out = append(out, c)
		}
	}
	return out
}

// merge inserts campaign creatives into the base playlist per display type.
//
// Interstitial campaigns insert their first creative after every Nth base
// item, N being the campaign frequency value, its own interstitial
// interval, or the fallback interval, in that order.
// Mixed campaigns re-walk that result with the same position test, rotating
// through their creatives, and their output replaces it. Scheduled
// campaigns append their creatives as a block when no mixed campaign ran.
func (c *Composer) merge(base []models.MediaItem, campaigns []models.AdCampaign) []Entry {
	merged := make([]Entry, 0, len(base)+len(campaigns))

	var interstitial, mixed, scheduled []models.AdCampaign
	for _, campaign := range campaigns {
		switch campaign.DisplayType {
		case models.DisplayMixed:
			mixed = append(mixed, campaign)
		case models.DisplayScheduled:
			scheduled = append(scheduled, campaign)
		default:
			interstitial = append(interstitial, campaign)
		}
	}

	if len(interstitial) > 0 {
		sortCampaigns(interstitial)
		for i, item := range base {
			merged = append(merged, baseEntry(item))
			for _, campaign := range interstitial {
				interval := campaign.FrequencyValue
				if interval == 0 {
					interval = campaign.InterstitialInterval
				}
				if interval == 0 {
					interval = c.fallbackInterval
				}
				if (i+1)%interval == 0 && len(campaign.Media) > 0 {
					merged = append(merged, adEntry(campaign, campaign.Media[0]))
					break // one ad per slot
				}
			}
		}
	} else {
		for _, item := range base {
			merged = append(merged, baseEntry(item))
		}
	}

	if len(mixed) > 0 {
		sortCampaigns(mixed)
		result := make([]Entry, 0, len(merged)*2)
		creativeIndex := 0
		for i, entry := range merged {
			result = append(result, entry)
			for _, campaign := range mixed {
				interval := campaign.FrequencyValue
				if interval == 0 {
					interval = 1
				}
				if (i+1)%interval == 0 && len(campaign.Media) > 0 {
					media := campaign.Media[creativeIndex%len(campaign.Media)]
					result = append(result, adEntry(campaign, media))
					creativeIndex++
					break
				}
			}
		}
		return result
	}

	for _, campaign := range scheduled {
		for _, media := range campaign.Media {
			merged = append(merged, adEntry(campaign, media))
		}
	}

	return merged
}

// sortCampaigns orders by priority descending, then frequency value
// ascending so more frequent campaigns win a contested slot.
func sortCampaigns(campaigns []models.AdCampaign) {
	sort.SliceStable(campaigns, func(i, j int) bool {
		if campaigns[i].Priority != campaigns[j].Priority {
			return campaigns[i].Priority > campaigns[j].Priority
		}
		return campaigns[i].FrequencyValue < campaigns[j].FrequencyValue
	})
}

func baseEntry(item models.MediaItem) Entry {
	return Entry{
		ID:       item.ID,
		Title:    item.Title,
		Type:     item.Type,
		URL:      item.URL,
		Duration: item.Duration,
	}
}

func adEntry(campaign models.AdCampaign, media models.AdMedia) Entry {
	return Entry{
		ID:           media.ID,
		Title:        media.Title,
		Type:         media.Type,
		URL:          media.URL,
		Duration:     media.Duration,
		IsAd:         true,
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		MediaID:      media.ID,
	}
}
