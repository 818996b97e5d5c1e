/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package ads

import (
	"math"
	"time"

	"github.com/harborlight/portkiosk/internal/models"
)

// FlightDays counts the calendar days a flight touches, boundary days
// included.
func FlightDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours()/24)) + 1
	if days < 1 {
		days = 1
	}
	return days
}

// Revenue returns the billed amount for a campaign flight. Both billing
// types charge the daily rate for every calendar day touched by the flight,
// so billingType does not change the math.
func Revenue(start, end time.Time, dailyRate float64, billingType string) float64 {
	return dailyRate * float64(FlightDays(start, end))
}

// DeriveStatus returns the campaign status implied by the clock. Dates win
// over everything; paused, rejected and completed stick inside the flight
// window.
func DeriveStatus(c *models.AdCampaign, now time.Time) string {
	if now.Before(c.StartDate) {
		return models.CampaignPending
	}
	if now.After(c.EndDate) {
		return models.CampaignExpired
	}
	switch c.Status {
	case models.CampaignPaused, models.CampaignRejected, models.CampaignCompleted:
		return c.Status
	}
	return models.CampaignActive
}
