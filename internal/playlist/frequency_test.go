/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playlist

import (
	"context"
	"testing"
	"time"

	"github.com/harborlight/portkiosk/internal/models"
)

func TestShouldShowInterval(t *testing.T) {
	c := &models.AdCampaign{ID: "c", FrequencyType: models.FrequencyInterval, FrequencyValue: 3}
	counter := &fakeCounter{counts: map[string]int64{}}

	tests := []struct {
		played int
		want   bool
	}{
		{0, false},
		{1, false},
		{2, false},
		{3, true},
		{4, false},
		{6, true},
		{9, true},
	}
	for _, tt := range tests {
		got, err := ShouldShow(context.Background(), counter, c, "k1", time.Now(), tt.played)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("ShouldShow(played=%d) = %v, want %v", tt.played, got, tt.want)
		}
	}
}

func TestShouldShowIntervalZeroValue(t *testing.T) {
	c := &models.AdCampaign{ID: "c", FrequencyType: models.FrequencyInterval, FrequencyValue: 0}
	got, err := ShouldShow(context.Background(), &fakeCounter{counts: map[string]int64{}}, c, "k1", time.Now(), 6)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("interval campaign with zero frequency value should never fire here")
	}
}

func TestShouldShowPerHour(t *testing.T) {
	c := &models.AdCampaign{ID: "c", FrequencyType: models.FrequencyPerHour, FrequencyValue: 4}

	got, err := ShouldShow(context.Background(), &fakeCounter{counts: map[string]int64{"c": 3}}, c, "k1", time.Now(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("3 of 4 hourly impressions used, should show")
	}

	got, err = ShouldShow(context.Background(), &fakeCounter{counts: map[string]int64{"c": 4}}, c, "k1", time.Now(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("hourly cap reached, should not show")
	}
}

func TestShouldShowPerDay(t *testing.T) {
	c := &models.AdCampaign{ID: "c", FrequencyType: models.FrequencyPerDay, FrequencyValue: 10}

	got, err := ShouldShow(context.Background(), &fakeCounter{counts: map[string]int64{"c": 9}}, c, "k1", time.Now(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("under daily cap, should show")
	}

	got, err = ShouldShow(context.Background(), &fakeCounter{counts: map[string]int64{"c": 10}}, c, "k1", time.Now(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("daily cap reached, should not show")
	}
}

func TestShouldShowUnknownTypeFailsOpen(t *testing.T) {
	c := &models.AdCampaign{ID: "c", FrequencyType: "weekly", FrequencyValue: 1}
	got, err := ShouldShow(context.Background(), &fakeCounter{counts: map[string]int64{}}, c, "k1", time.Now(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("unknown frequency type should not block a campaign")
	}
}
