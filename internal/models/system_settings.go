/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// SystemSetting is one key/value row of kiosk display configuration.
// Keys are stored snake_case; the API layer maps them to camelCase fields.
type SystemSetting struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Key       string    `gorm:"uniqueIndex;not null" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

func NewSystemSetting(key, value string) *SystemSetting {
	return &SystemSetting{
		ID:    uuid.NewString(),
		Key:   key,
		Value: value,
	}
}

// Known setting keys.
const (
	SettingSystemName       = "system_name"
	SettingLogo             = "logo"
	SettingPortOfficeNumber = "port_office_number"
	SettingBoardingTime     = "boarding_time"
	SettingLastCallTime     = "last_call_time"
	SettingFadeInterval     = "fade_interval"
	SettingTheme            = "theme"
)
