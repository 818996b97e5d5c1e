/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package ads

import (
	"testing"
	"time"

	"github.com/harborlight/portkiosk/internal/models"
)

func day(d int) time.Time {
	return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
}

func TestRevenue(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		rate    float64
		billing string
		want    float64
	}{
		{"single day", day(1), day(1), 100, models.BillingDaily, 100},
		{"one week inclusive", day(1), day(7), 100, models.BillingDaily, 700},
		{"monthly bills per day too", day(1), day(30), 50, models.BillingMonthly, 1500},
		{"partial day rounds up", day(1), day(2).Add(6 * time.Hour), 100, models.BillingDaily, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Revenue(tt.start, tt.end, tt.rate, tt.billing)
			if got != tt.want {
				t.Errorf("Revenue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	now := day(15)
	tests := []struct {
		name   string
		status string
		start  time.Time
		end    time.Time
		want   string
	}{
		{"not started yet", models.CampaignActive, day(20), day(25), models.CampaignPending},
		{"past end date", models.CampaignActive, day(1), day(10), models.CampaignExpired},
		{"paused past end expires", models.CampaignPaused, day(1), day(10), models.CampaignExpired},
		{"paused in window sticks", models.CampaignPaused, day(1), day(30), models.CampaignPaused},
		{"rejected sticks", models.CampaignRejected, day(1), day(30), models.CampaignRejected},
		{"completed sticks", models.CampaignCompleted, day(1), day(30), models.CampaignCompleted},
		{"pending in window activates", models.CampaignPending, day(1), day(30), models.CampaignActive},
		{"active stays active", models.CampaignActive, day(1), day(30), models.CampaignActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.AdCampaign{Status: tt.status, StartDate: tt.start, EndDate: tt.end}
			if got := DeriveStatus(c, now); got != tt.want {
				t.Errorf("DeriveStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
