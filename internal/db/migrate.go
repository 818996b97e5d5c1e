/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/models"
)

// Migrate runs gorm auto-migration for every model.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Schedule{},
		&models.MediaItem{},
		&models.VideoControl{},
		&models.SystemSetting{},
		&models.Advertiser{},
		&models.AdCampaign{},
		&models.AdMedia{},
		&models.AdSchedule{},
		&models.AdImpression{},
		&models.AuditLog{},
		&models.WebhookTarget{},
		&models.WebhookLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
