/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one admin action or kiosk-visible change. Actor fields
// are empty for unauthenticated events such as impressions.
type AuditLog struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Action     string    `gorm:"index;not null" json:"action"`
	ActorID    string    `gorm:"index" json:"actorId"`
	ActorEmail string    `json:"actorEmail"`
	ResourceID string    `gorm:"index" json:"resourceId"`
	Details    string    `gorm:"type:text" json:"details"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func NewAuditLog(action string) *AuditLog {
	return &AuditLog{
		ID:     uuid.NewString(),
		Action: action,
	}
}
