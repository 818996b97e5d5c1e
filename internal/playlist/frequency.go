/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playlist

import (
	"context"
	"time"

	"github.com/harborlight/portkiosk/internal/models"
)

// ImpressionCounter reports how many impressions a campaign has recorded on
// a kiosk since a point in time. The ads service implements it against the
// database; tests use a fake.
type ImpressionCounter interface {
	CountSince(ctx context.Context, campaignID, kioskID string, since time.Time) (int64, error)
}

// ShouldShow applies the campaign's frequency rule. Frequency is a display
// pacing setting, not a billing cap.
//
// Interval campaigns show after every Nth video. Per-hour and per-day
// campaigns are capped by impressions recorded in the rolling hour or since
// local midnight. Unknown frequency types never block.
func ShouldShow(ctx context.Context, counter ImpressionCounter, c *models.AdCampaign, kioskID string, now time.Time, totalVideosPlayed int) (bool, error) {
	switch c.FrequencyType {
	case models.FrequencyInterval:
		if totalVideosPlayed == 0 || c.FrequencyValue == 0 {
			return false, nil
		}
		return totalVideosPlayed%c.FrequencyValue == 0, nil

	case models.FrequencyPerHour:
		count, err := counter.CountSince(ctx, c.ID, kioskID, now.Add(-time.Hour))
		if err != nil {
			return false, err
		}
		return count < int64(c.FrequencyValue), nil

	case models.FrequencyPerDay:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		count, err := counter.CountSince(ctx, c.ID, kioskID, midnight)
		if err != nil {
			return false, err
		}
		return count < int64(c.FrequencyValue), nil

	default:
		return true, nil
	}
}
