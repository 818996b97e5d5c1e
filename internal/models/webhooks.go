/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookTarget is an external endpoint notified about system events.
// Events is a comma separated list of event types; empty means all.
type WebhookTarget struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	URL       string    `gorm:"not null" json:"url"`
	Secret    string    `json:"-"`
	Events    string    `json:"events"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (WebhookTarget) TableName() string {
	return "webhook_targets"
}

func NewWebhookTarget(name, url string) *WebhookTarget {
	return &WebhookTarget{
		ID:     uuid.NewString(),
		Name:   name,
		URL:    url,
		Active: true,
	}
}

// WebhookLog records one delivery attempt. StatusCode 0 means the request
// never completed.
type WebhookLog struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TargetID   string    `gorm:"index;not null" json:"targetId"`
	Event      string    `json:"event"`
	StatusCode int       `json:"statusCode"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs"
}
