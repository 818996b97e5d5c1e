/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package ads

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/harborlight/portkiosk/internal/models"
)

func testService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.Advertiser{},
		&models.AdCampaign{},
		&models.AdMedia{},
		&models.AdSchedule{},
		&models.AdImpression{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(gdb, zerolog.Nop())
}

func seedCampaign(t *testing.T, svc *Service, status string, start, end time.Time) *models.AdCampaign {
	t.Helper()
	ctx := context.Background()
	advertiser := models.NewAdvertiser("Pier Coffee", "Sam", "sam@piercoffee.example")
	if err := svc.CreateAdvertiser(ctx, advertiser); err != nil {
		t.Fatal(err)
	}
	campaign := models.NewAdCampaign(advertiser.ID, "Morning Brew", start, end)
	campaign.Status = status
	if err := svc.CreateCampaign(ctx, campaign); err != nil {
		t.Fatal(err)
	}
	return campaign
}

func TestRecordImpressionUnknownCampaign(t *testing.T) {
	svc := testService(t)
	impression := models.NewAdImpression("no-such-campaign", "", "k1", time.Now())
	err := svc.RecordImpression(context.Background(), impression)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordImpression() error = %v, want ErrNotFound", err)
	}
}

func TestRecordAndCountImpressions(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	now := time.Now()
	campaign := seedCampaign(t, svc, models.CampaignActive, now.Add(-time.Hour), now.Add(time.Hour))

	for i := 0; i < 3; i++ {
		impression := models.NewAdImpression(campaign.ID, "", "k1", now.Add(-time.Duration(i)*time.Minute))
		if err := svc.RecordImpression(ctx, impression); err != nil {
			t.Fatalf("RecordImpression() error = %v", err)
		}
	}
	// different kiosk, should not count for k1
	other := models.NewAdImpression(campaign.ID, "", "k2", now)
	if err := svc.RecordImpression(ctx, other); err != nil {
		t.Fatal(err)
	}

	count, err := svc.CountSince(ctx, campaign.ID, "k1", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince() error = %v", err)
	}
	if count != 3 {
		t.Errorf("CountSince() = %d, want 3", count)
	}
}

func TestSweepStatuses(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	now := time.Now()

	ended := seedCampaign(t, svc, models.CampaignActive, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	starting := seedCampaign(t, svc, models.CampaignPending, now.Add(-time.Hour), now.Add(24*time.Hour))
	rejected := seedCampaign(t, svc, models.CampaignRejected, now.Add(-time.Hour), now.Add(24*time.Hour))

	if err := svc.SweepStatuses(ctx, now); err != nil {
		t.Fatalf("SweepStatuses() error = %v", err)
	}

	check := func(id, want string) {
		t.Helper()
		got, err := svc.GetCampaign(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != want {
			t.Errorf("campaign %s status = %q, want %q", id, got.Status, want)
		}
	}
	check(ended.ID, models.CampaignExpired)
	check(starting.ID, models.CampaignActive)
	check(rejected.ID, models.CampaignRejected)
}

func TestNewCampaignStartsPending(t *testing.T) {
	now := time.Now()
	campaign := models.NewAdCampaign("adv-1", "Harbor Lights", now, now.Add(24*time.Hour))
	if campaign.Status != models.CampaignPending {
		t.Errorf("new campaign status = %q, want %q", campaign.Status, models.CampaignPending)
	}
}

func TestPauseAndResume(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	now := time.Now()
	campaign := seedCampaign(t, svc, models.CampaignActive, now.Add(-time.Hour), now.Add(24*time.Hour))

	paused, err := svc.Pause(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if paused.Status != models.CampaignPaused {
		t.Errorf("status after pause = %q", paused.Status)
	}

	resumed, err := svc.Resume(ctx, campaign.ID, now)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if resumed.Status != models.CampaignActive {
		t.Errorf("status after resume = %q", resumed.Status)
	}
}

func TestApproveBeforeWindowIsPending(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	now := time.Now()
	campaign := seedCampaign(t, svc, models.CampaignPending, now.Add(24*time.Hour), now.Add(48*time.Hour))

	approved, err := svc.Approve(ctx, campaign.ID, now)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if approved.Status != models.CampaignPending {
		t.Errorf("status after early approve = %q, want pending", approved.Status)
	}
}

func TestDeleteAdvertiserWithCampaigns(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	now := time.Now()
	campaign := seedCampaign(t, svc, models.CampaignActive, now, now.Add(time.Hour))

	err := svc.DeleteAdvertiser(ctx, campaign.AdvertiserID)
	if !errors.Is(err, ErrHasCampaigns) {
		t.Errorf("DeleteAdvertiser() error = %v, want ErrHasCampaigns", err)
	}
}

func TestDeleteCampaignCascades(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	now := time.Now()
	campaign := seedCampaign(t, svc, models.CampaignActive, now, now.Add(time.Hour))

	media := models.NewAdMedia(campaign.ID, "spot", "video", "/ads/spot.mp4", 15)
	if err := svc.AddCampaignMedia(ctx, media); err != nil {
		t.Fatal(err)
	}
	schedule := models.NewAdSchedule(campaign.ID)
	if err := svc.AddCampaignSchedule(ctx, schedule); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteCampaign(ctx, campaign.ID); err != nil {
		t.Fatalf("DeleteCampaign() error = %v", err)
	}

	var mediaCount, scheduleCount int64
	svc.db.Model(&models.AdMedia{}).Where("campaign_id = ?", campaign.ID).Count(&mediaCount)
	svc.db.Model(&models.AdSchedule{}).Where("campaign_id = ?", campaign.ID).Count(&scheduleCount)
	if mediaCount != 0 || scheduleCount != 0 {
		t.Errorf("campaign children not cascaded: media=%d schedules=%d", mediaCount, scheduleCount)
	}
}
