/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/harborlight/portkiosk/internal/db"
	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/models"
)

func testService(t *testing.T) (*Service, *gorm.DB) {
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
	return NewService(gdb, events.NewBus(), zerolog.Nop()), gdb
}

func TestTargetHandlesEvent(t *testing.T) {
	tests := []struct {
		name      string
		events    string
		eventType string
		want      bool
	}{
		{"empty subscribes to all", "", "campaign.updated", true},
		{"exact match", "campaign.updated", "campaign.updated", true},
		{"list match", "schedule.updated, campaign.updated", "campaign.updated", true},
		{"no match", "schedule.updated", "campaign.updated", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := models.WebhookTarget{Events: tt.events}
			if got := targetHandlesEvent(target, tt.eventType); got != tt.want {
				t.Errorf("targetHandlesEvent(%q, %q) = %v, want %v", tt.events, tt.eventType, got, tt.want)
			}
		})
	}
}

func TestSignPayload(t *testing.T) {
	body := []byte(`{"event":"test"}`)
	secret := "hunter2"

	got := signPayload(body, secret)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if got != want {
		t.Errorf("signature = %q, want %q", got, want)
	}
}

func TestDeliverySendsSignedRequest(t *testing.T) {
	svc, gdb := testService(t)

	received := make(chan *http.Request, 1)
	var receivedBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedBody, _ = io.ReadAll(r.Body)
		received <- r
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	target := models.NewWebhookTarget("test", ts.URL)
	target.Secret = "s3cret"
	if err := gdb.Create(target).Error; err != nil {
		t.Fatalf("create target: %v", err)
	}

	svc.deliver(context.Background(), *target, events.TypeCampaignUpdated, map[string]any{"campaignId": "c1"})

	req := <-received
	if req.Header.Get("X-Portkiosk-Event") != events.TypeCampaignUpdated {
		t.Errorf("event header = %q", req.Header.Get("X-Portkiosk-Event"))
	}
	if got := req.Header.Get("X-Portkiosk-Signature"); got != signPayload(receivedBody, "s3cret") {
		t.Errorf("signature header = %q does not verify", got)
	}

	var payload Payload
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if payload.Event != events.TypeCampaignUpdated || payload.Data["campaignId"] != "c1" {
		t.Errorf("payload = %+v", payload)
	}

	var count int64
	if err := gdb.Model(&models.WebhookLog{}).Where("target_id = ? AND status_code = 200", target.ID).Count(&count).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if count != 1 {
		t.Errorf("delivery log count = %d, want 1", count)
	}
}

func TestDeliveryLogsFailure(t *testing.T) {
	svc, gdb := testService(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	target := models.NewWebhookTarget("failing", ts.URL)
	if err := gdb.Create(target).Error; err != nil {
		t.Fatalf("create target: %v", err)
	}

	svc.deliver(context.Background(), *target, events.TypeSettingsUpdated, nil)

	var entry models.WebhookLog
	if err := gdb.First(&entry, "target_id = ?", target.ID).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if entry.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", entry.StatusCode)
	}
}

func TestTestReportsBadStatus(t *testing.T) {
	svc, _ := testService(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	target := models.NewWebhookTarget("broken", ts.URL)
	if err := svc.Test(context.Background(), target); err == nil {
		t.Error("expected error for non-2xx response")
	}
}
