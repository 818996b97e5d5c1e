/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playlist

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborlight/portkiosk/internal/models"
)

type fakeCounter struct {
	counts map[string]int64
}

func (f *fakeCounter) CountSince(_ context.Context, campaignID, _ string, _ time.Time) (int64, error) {
	return f.counts[campaignID], nil
}

func testComposer(counts map[string]int64) *Composer {
	if counts == nil {
		counts = map[string]int64{}
	}
	return NewComposer(&fakeCounter{counts: counts}, 3, zerolog.Nop())
}

func baseMedia(titles ...string) []models.MediaItem {
	items := make([]models.MediaItem, len(titles))
	for i, title := range titles {
		items[i] = models.MediaItem{ID: "m-" + title, Title: title, Type: "video", URL: "/media/" + title}
	}
	return items
}

func activeCampaign(id, displayType string, freqValue int, mediaTitles ...string) models.AdCampaign {
	now := time.Now()
	c := models.AdCampaign{
		ID:             id,
		Name:           "campaign " + id,
		Status:         models.CampaignActive,
		StartDate:      now.Add(-24 * time.Hour),
		EndDate:        now.Add(24 * time.Hour),
		DisplayType:    displayType,
		FrequencyType:  models.FrequencyInterval,
		FrequencyValue: freqValue,
	}
	for _, title := range mediaTitles {
		c.Media = append(c.Media, models.AdMedia{ID: "ad-" + title, CampaignID: id, Title: title, Type: "video", URL: "/ads/" + title})
	}
	return c
}

func titles(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func TestInterstitialEveryThird(t *testing.T) {
	base := baseMedia("A", "B", "C", "D", "E", "F")
	campaigns := []models.AdCampaign{activeCampaign("c1", models.DisplayInterstitial, 3, "X")}

	got, err := testComposer(nil).Compose(context.Background(), base, campaigns, time.Now(), "k1", 0)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	want := []string{"A", "B", "C", "X", "D", "E", "F", "X"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("playlist = %v, want %v", titles(got), want)
	}
	if !got[3].IsAd || got[3].CampaignID != "c1" {
		t.Errorf("entry 3 should be an ad for c1, got %+v", got[3])
	}
}

func TestInterstitialFallbackInterval(t *testing.T) {
	base := baseMedia("A", "B", "C", "D", "E", "F")
	campaigns := []models.AdCampaign{activeCampaign("c1", models.DisplayInterstitial, 0, "X")}

	got, err := testComposer(nil).Compose(context.Background(), base, campaigns, time.Now(), "k1", 0)
	if err != nil {
		t.Fatal(err)
	}

	// frequency value 0 falls back to the configured interval of 3
	want := []string{"A", "B", "C", "X", "D", "E", "F", "X"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("playlist = %v, want %v", titles(got), want)
	}
}

func TestOneAdPerSlotPriorityWins(t *testing.T) {
	base := baseMedia("A", "B", "C")
	low := activeCampaign("low", models.DisplayInterstitial, 3, "L")
	high := activeCampaign("high", models.DisplayInterstitial, 3, "H")
	high.Priority = 10

	got, err := testComposer(nil).Compose(context.Background(), base, []models.AdCampaign{low, high}, time.Now(), "k1", 0)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"A", "B", "C", "H"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("playlist = %v, want %v", titles(got), want)
	}
}

func TestInactiveAndOutOfWindowExcluded(t *testing.T) {
	now := time.Now()
	paused := activeCampaign("p", models.DisplayInterstitial, 1, "P")
	paused.Status = models.CampaignPaused
	future := activeCampaign("f", models.DisplayInterstitial, 1, "F")
	future.StartDate = now.Add(time.Hour)
	expired := activeCampaign("e", models.DisplayInterstitial, 1, "E")
	expired.EndDate = now.Add(-time.Hour)

	got, err := testComposer(nil).Compose(context.Background(), baseMedia("A"), []models.AdCampaign{paused, future, expired}, now, "k1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(titles(got), []string{"A"}) {
		t.Errorf("playlist = %v, want only the base item", titles(got))
	}
}

func TestScheduleGatesOnlyScheduledCampaigns(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC) // Monday 10:00
	otherDay := (int(now.Weekday()) + 1) % 7

	scheduled := activeCampaign("s", models.DisplayScheduled, 1, "S")
	scheduled.Schedules = []models.AdSchedule{{ID: "sch1", CampaignID: "s", DayOfWeek: &otherDay, Active: true}}

	interstitial := activeCampaign("i", models.DisplayInterstitial, 1, "I")
	interstitial.Schedules = []models.AdSchedule{{ID: "sch2", CampaignID: "i", DayOfWeek: &otherDay, Active: true}}

	got := FilterBySchedule([]models.AdCampaign{scheduled, interstitial}, now)
	if len(got) != 1 || got[0].ID != "i" {
		ids := make([]string, len(got))
		for i, c := range got {
			ids[i] = c.ID
		}
		t.Errorf("filtered = %v, want [i]: a mismatched schedule only blocks scheduled campaigns", ids)
	}
}

func TestScheduleDaypartWindow(t *testing.T) {
	day := int(time.Monday)
	start, end := 9*60, 17*60
	c := activeCampaign("s", models.DisplayScheduled, 1, "S")
	c.Schedules = []models.AdSchedule{{ID: "sch", CampaignID: "s", DayOfWeek: &day, StartMinutes: &start, EndMinutes: &end, Active: true}}

	monday10 := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	if got := FilterBySchedule([]models.AdCampaign{c}, monday10); len(got) != 1 {
		t.Error("campaign should match inside its daypart")
	}

	monday18 := time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)
	if got := FilterBySchedule([]models.AdCampaign{c}, monday18); len(got) != 0 {
		t.Error("campaign should not match outside its daypart")
	}
}

func TestInactiveScheduleRowIgnored(t *testing.T) {
	c := activeCampaign("s", models.DisplayScheduled, 1, "S")
	c.Schedules = []models.AdSchedule{{ID: "sch", CampaignID: "s", Active: false}}

	if got := FilterBySchedule([]models.AdCampaign{c}, time.Now()); len(got) != 0 {
		t.Error("a scheduled campaign with only inactive rows should be excluded")
	}
}

func TestNoSchedulesRunsAlways(t *testing.T) {
	c := activeCampaign("s", models.DisplayScheduled, 1, "S")
	if got := FilterBySchedule([]models.AdCampaign{c}, time.Now()); len(got) != 1 {
		t.Error("a campaign with no schedule rows should run at all times")
	}
}

func TestScheduledCampaignsAppendFlatBlock(t *testing.T) {
	c := activeCampaign("s", models.DisplayScheduled, 1, "S1", "S2")

	got, err := testComposer(nil).Compose(context.Background(), baseMedia("A", "B"), []models.AdCampaign{c}, time.Now(), "k1", 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A", "B", "S1", "S2"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("playlist = %v, want %v", titles(got), want)
	}
}

func TestMixedRotatesCreativesAndReplacesScheduledBlock(t *testing.T) {
	mixed := activeCampaign("m", models.DisplayMixed, 1, "M1", "M2")
	scheduled := activeCampaign("s", models.DisplayScheduled, 1, "S")

	got, err := testComposer(nil).Compose(context.Background(), baseMedia("A", "B", "C"), []models.AdCampaign{mixed, scheduled}, time.Now(), "k1", 0)
	if err != nil {
		t.Fatal(err)
	}

	// The mixed pass rotates through its creatives and returns directly,
	// so the scheduled block never lands.
	want := []string{"A", "M1", "B", "M2", "C", "M1"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("playlist = %v, want %v", titles(got), want)
	}
}

func TestMixedWalksInterstitialResult(t *testing.T) {
	inter := activeCampaign("i", models.DisplayInterstitial, 2, "X")
	mixed := activeCampaign("m", models.DisplayMixed, 3, "M")

	got, err := testComposer(nil).Compose(context.Background(), baseMedia("A", "B", "C", "D"), []models.AdCampaign{inter, mixed}, time.Now(), "k1", 0)
	if err != nil {
		t.Fatal(err)
	}

	// Interstitial pass: A B X C D X. Mixed pass counts positions over that
	// result, inserting after positions 3 and 6.
	want := []string{"A", "B", "X", "M", "C", "D", "X", "M"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("playlist = %v, want %v", titles(got), want)
	}
}

func TestCampaignWithoutMediaContributesNothing(t *testing.T) {
	empty := activeCampaign("e", models.DisplayInterstitial, 1)

	got, err := testComposer(nil).Compose(context.Background(), baseMedia("A", "B"), []models.AdCampaign{empty}, time.Now(), "k1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(titles(got), []string{"A", "B"}) {
		t.Errorf("playlist = %v, want base media only", titles(got))
	}
}

func TestPerDayCapGatesCampaign(t *testing.T) {
	c := activeCampaign("c", models.DisplayInterstitial, 5, "X")
	c.FrequencyType = models.FrequencyPerDay
	c.FrequencyValue = 5

	// Five base items so the frequency value's slot interval lands once.
	base := baseMedia("A", "B", "C", "D", "E")

	under, err := testComposer(map[string]int64{"c": 4}).Compose(context.Background(), base, []models.AdCampaign{c}, time.Now(), "k1", 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A", "B", "C", "D", "E", "X"}
	if !reflect.DeepEqual(titles(under), want) {
		t.Errorf("playlist = %v, want %v: campaign under its daily cap should contribute ads", titles(under), want)
	}

	over, err := testComposer(map[string]int64{"c": 5}).Compose(context.Background(), base, []models.AdCampaign{c}, time.Now(), "k1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(titles(over), []string{"A", "B", "C", "D", "E"}) {
		t.Errorf("playlist = %v, campaign at its daily cap should be gated", titles(over))
	}
}

func TestCampaignIntervalOverridesFallback(t *testing.T) {
	c := activeCampaign("c1", models.DisplayInterstitial, 0, "X")
	c.InterstitialInterval = 2

	got, err := testComposer(nil).Compose(context.Background(), baseMedia("A", "B", "C", "D"), []models.AdCampaign{c}, time.Now(), "k1", 0)
	if err != nil {
		t.Fatal(err)
	}

	// With no frequency value the campaign's own interval beats the
	// composer default of 3.
	want := []string{"A", "B", "X", "C", "D", "X"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("playlist = %v, want %v", titles(got), want)
	}
}

func TestComposeDeterministic(t *testing.T) {
	base := baseMedia("A", "B", "C", "D", "E", "F")
	campaigns := []models.AdCampaign{
		activeCampaign("c1", models.DisplayInterstitial, 3, "X"),
		activeCampaign("c2", models.DisplayInterstitial, 2, "Y"),
	}
	now := time.Now()

	first, err := testComposer(nil).Compose(context.Background(), base, campaigns, now, "k1", 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := testComposer(nil).Compose(context.Background(), base, campaigns, now, "k1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same inputs should compose the same playlist")
	}
}
