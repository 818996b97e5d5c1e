/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package settings stores kiosk display configuration as key/value rows.
package settings

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborlight/portkiosk/internal/models"
)

// Settings is the camelCase view served to the dashboard and the kiosk.
type Settings struct {
	SystemName       string `json:"systemName"`
	Logo             string `json:"logo"`
	PortOfficeNumber string `json:"portOfficeNumber"`
	BoardingTime     int    `json:"boardingTime"`
	LastCallTime     int    `json:"lastCallTime"`
	FadeInterval     int    `json:"fadeInterval"`
	Theme            string `json:"theme"`
}

// Defaults applied when a key has no row yet.
const (
	defaultMinutes = 30
	defaultTheme   = "dark"
)

type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "settings").Logger(),
	}
}

// Load reads every settings row and folds it into the typed view.
func (s *Service) Load(ctx context.Context) (*Settings, error) {
	var rows []models.SystemSetting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	out := &Settings{
		BoardingTime: defaultMinutes,
		LastCallTime: defaultMinutes,
		FadeInterval: defaultMinutes,
		Theme:        defaultTheme,
	}
	for _, row := range rows {
		switch row.Key {
		case models.SettingSystemName:
			out.SystemName = row.Value
		case models.SettingLogo:
			out.Logo = row.Value
		case models.SettingPortOfficeNumber:
			out.PortOfficeNumber = row.Value
		case models.SettingBoardingTime:
			out.BoardingTime = parseMinutes(row.Value)
		case models.SettingLastCallTime:
			out.LastCallTime = parseMinutes(row.Value)
		case models.SettingFadeInterval:
			out.FadeInterval = parseMinutes(row.Value)
		case models.SettingTheme:
			out.Theme = row.Value
		}
	}
	return out, nil
}

// Save upserts one row per settings field.
func (s *Service) Save(ctx context.Context, in *Settings) error {
	rows := map[string]string{
		models.SettingSystemName:       in.SystemName,
		models.SettingLogo:             in.Logo,
		models.SettingPortOfficeNumber: in.PortOfficeNumber,
		models.SettingBoardingTime:     strconv.Itoa(in.BoardingTime),
		models.SettingLastCallTime:     strconv.Itoa(in.LastCallTime),
		models.SettingFadeInterval:     strconv.Itoa(in.FadeInterval),
		models.SettingTheme:            in.Theme,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range rows {
			row := models.NewSystemSetting(key, value)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(row).Error; err != nil {
				return fmt.Errorf("save setting %s: %w", key, err)
			}
		}
		return nil
	})
}

func parseMinutes(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultMinutes
	}
	return n
}
