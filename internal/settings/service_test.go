/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package settings

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/harborlight/portkiosk/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.SystemSetting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func TestLoadDefaults(t *testing.T) {
	svc := NewService(testDB(t), zerolog.Nop())

	got, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.BoardingTime != 30 || got.LastCallTime != 30 || got.FadeInterval != 30 {
		t.Errorf("minute defaults = %d/%d/%d, want 30/30/30", got.BoardingTime, got.LastCallTime, got.FadeInterval)
	}
	if got.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", got.Theme)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	svc := NewService(testDB(t), zerolog.Nop())
	ctx := context.Background()

	in := &Settings{
		SystemName:       "Harborlight Pier 7",
		Logo:             "/media/logo.png",
		PortOfficeNumber: "+1 555 0100",
		BoardingTime:     45,
		LastCallTime:     10,
		FadeInterval:     20,
		Theme:            "light",
	}
	if err := svc.Save(ctx, in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *in {
		t.Errorf("Load() = %+v, want %+v", got, in)
	}
}

func TestSaveUpserts(t *testing.T) {
	svc := NewService(testDB(t), zerolog.Nop())
	ctx := context.Background()

	first := &Settings{SystemName: "Old Name", BoardingTime: 30, LastCallTime: 30, FadeInterval: 30, Theme: "dark"}
	if err := svc.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := &Settings{SystemName: "New Name", BoardingTime: 30, LastCallTime: 30, FadeInterval: 30, Theme: "dark"}
	if err := svc.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.SystemName != "New Name" {
		t.Errorf("SystemName = %q, want New Name", got.SystemName)
	}

	var count int64
	if err := svc.db.Model(&models.SystemSetting{}).Where("key = ?", models.SettingSystemName).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("system_name rows = %d, want 1", count)
	}
}

func TestMalformedMinuteValueFallsBack(t *testing.T) {
	gdb := testDB(t)
	if err := gdb.Create(models.NewSystemSetting(models.SettingBoardingTime, "soon")).Error; err != nil {
		t.Fatal(err)
	}

	got, err := NewService(gdb, zerolog.Nop()).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.BoardingTime != 30 {
		t.Errorf("BoardingTime = %d, want fallback 30", got.BoardingTime)
	}
}
