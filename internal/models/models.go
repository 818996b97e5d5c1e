/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an admin dashboard account.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         string    `json:"name"`
	Role         string    `gorm:"default:admin" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// NewUser creates a user with a generated ID.
func NewUser(email, passwordHash, name, role string) *User {
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
	}
}

// Schedule is one recurring ferry departure row shown on the kiosk board.
// Days holds the weekday names the departure runs on. DepartureTime and
// ArrivalTime are 24-hour "HH:MM" clocks; TimeDisplay is the rendered
// 12-hour window, e.g. "09:30 AM - 10:15 AM", derived when not set.
type Schedule struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Route         string     `gorm:"not null" json:"route"`
	Vessel        string     `json:"vessel"`
	DepartureTime string     `json:"departureTime"`
	ArrivalTime   string     `json:"arrivalTime"`
	TimeDisplay   string     `gorm:"not null" json:"timeDisplay"`
	Days          StringList `gorm:"type:text" json:"days"`
	Status        string     `gorm:"default:Ontime" json:"status"`
	SortOrder     int        `gorm:"default:0" json:"sortOrder"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (Schedule) TableName() string {
	return "schedules"
}

func NewSchedule(route, vessel, departure, arrival string, days []string) *Schedule {
	return &Schedule{
		ID:            uuid.NewString(),
		Route:         route,
		Vessel:        vessel,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		Days:          days,
		Status:        "Ontime",
	}
}

// MediaItem is one entry of the kiosk base playlist.
type MediaItem struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title     string    `json:"title"`
	Type      string    `gorm:"not null" json:"type"` // video or image
	URL       string    `gorm:"not null" json:"url"`
	Duration  int       `gorm:"default:0" json:"duration"` // seconds, for images
	SortOrder int       `gorm:"default:0" json:"sortOrder"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (MediaItem) TableName() string {
	return "media_items"
}

func NewMediaItem(title, mediaType, url string, duration int) *MediaItem {
	return &MediaItem{
		ID:       uuid.NewString(),
		Title:    title,
		Type:     mediaType,
		URL:      url,
		Duration: duration,
		Enabled:  true,
	}
}

// VideoControl is the last reported playback position of a kiosk. One row per
// kiosk, last writer wins.
type VideoControl struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	KioskID      string    `gorm:"uniqueIndex;not null" json:"kioskId"`
	CurrentIndex int       `gorm:"default:0" json:"currentIndex"`
	IsPlaying    bool      `gorm:"default:true" json:"isPlaying"`
	IsLooping    bool      `gorm:"default:false" json:"isLooping"`
	Volume       int       `gorm:"default:80" json:"volume"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (VideoControl) TableName() string {
	return "video_controls"
}

func NewVideoControl(kioskID string) *VideoControl {
	return &VideoControl{
		ID:        uuid.NewString(),
		KioskID:   kioskID,
		IsPlaying: true,
		Volume:    80,
	}
}
