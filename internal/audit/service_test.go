/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/harborlight/portkiosk/internal/db"
	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/models"
)

func testService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(gdb, events.NewBus(), zerolog.Nop())
}

func TestRecordEventMapsPayload(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.recordEvent(ctx, events.Event{
		Type: events.TypeCampaignUpdated,
		At:   at,
		Payload: map[string]any{
			"actorId":    "user-1",
			"actorEmail": "ops@example.com",
			"campaignId": "camp-1",
			"status":     "active",
		},
	})

	entries, total, err := svc.Query(ctx, QueryFilters{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("total = %d, len = %d, want 1", total, len(entries))
	}

	entry := entries[0]
	if entry.Action != events.TypeCampaignUpdated {
		t.Errorf("action = %q", entry.Action)
	}
	if entry.ActorID != "user-1" || entry.ActorEmail != "ops@example.com" {
		t.Errorf("actor = %q / %q", entry.ActorID, entry.ActorEmail)
	}
	if entry.ResourceID != "camp-1" {
		t.Errorf("resource = %q", entry.ResourceID)
	}

	var details map[string]any
	if err := json.Unmarshal([]byte(entry.Details), &details); err != nil {
		t.Fatalf("unmarshal details: %v", err)
	}
	if details["status"] != "active" {
		t.Errorf("details = %v", details)
	}
	if _, ok := details["actorId"]; ok {
		t.Error("actorId should not be duplicated into details")
	}
}

func TestLogSetsCreatedAt(t *testing.T) {
	svc := testService(t)

	entry := models.NewAuditLog("auth.login")
	entry.ActorEmail = "admin@example.com"
	if err := svc.Log(context.Background(), entry); err != nil {
		t.Fatalf("log: %v", err)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestQueryFilters(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seed := []struct {
		action  string
		actorID string
		offset  time.Duration
	}{
		{"schedule.updated", "user-1", 0},
		{"schedule.updated", "user-2", time.Hour},
		{"settings.updated", "user-1", 2 * time.Hour},
		{"campaign.updated", "user-2", 3 * time.Hour},
	}
	for _, s := range seed {
		entry := models.NewAuditLog(s.action)
		entry.ActorID = s.actorID
		entry.CreatedAt = base.Add(s.offset)
		if err := svc.Log(ctx, entry); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	since := base.Add(90 * time.Minute)

	tests := []struct {
		name      string
		filters   QueryFilters
		wantCount int
		wantTotal int64
	}{
		{"all", QueryFilters{}, 4, 4},
		{"by action", QueryFilters{Action: "schedule.updated"}, 2, 2},
		{"by actor", QueryFilters{ActorID: "user-1"}, 2, 2},
		{"since", QueryFilters{Since: &since}, 2, 2},
		{"limit keeps total", QueryFilters{Limit: 1}, 1, 4},
		{"offset", QueryFilters{Limit: 10, Offset: 3}, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, total, err := svc.Query(ctx, tt.filters)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(entries) != tt.wantCount {
				t.Errorf("count = %d, want %d", len(entries), tt.wantCount)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
		})
	}
}

func TestQueryNewestFirst(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry := models.NewAuditLog(fmt.Sprintf("action-%d", i))
		entry.CreatedAt = time.Date(2026, 6, 1, i, 0, 0, 0, time.UTC)
		if err := svc.Log(ctx, entry); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	entries, _, err := svc.Query(ctx, QueryFilters{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if entries[0].Action != "action-2" || entries[2].Action != "action-0" {
		t.Errorf("unexpected order: %s .. %s", entries[0].Action, entries[2].Action)
	}
}
