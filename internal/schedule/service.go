/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule manages the ferry departure board.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/models"
)

// ErrNotFound is returned when the schedule row does not exist.
var ErrNotFound = errors.New("schedule not found")

// BoardEntry is a schedule row with its derived real-time status.
type BoardEntry struct {
	models.Schedule
	RealTimeStatus string `json:"realTimeStatus"`
}

type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "schedule").Logger(),
	}
}

// List returns all schedule rows ordered for the admin table.
func (s *Service) List(ctx context.Context) ([]models.Schedule, error) {
	var schedules []models.Schedule
	if err := s.db.WithContext(ctx).
		Order("sort_order ASC, time_display ASC").
		Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := s.db.WithContext(ctx).First(&schedule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return &schedule, nil
}

func (s *Service) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.TimeDisplay == "" {
		schedule.TimeDisplay = DisplayWindow(schedule.DepartureTime, schedule.ArrivalTime)
	}
	if err := s.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	s.logger.Info().Str("schedule_id", schedule.ID).Str("route", schedule.Route).Msg("schedule created")
	return nil
}

func (s *Service) Update(ctx context.Context, schedule *models.Schedule) error {
	if schedule.TimeDisplay == "" {
		schedule.TimeDisplay = DisplayWindow(schedule.DepartureTime, schedule.ArrivalTime)
	}
	result := s.db.WithContext(ctx).Model(&models.Schedule{}).
		Where("id = ?", schedule.ID).
		Updates(map[string]any{
			"route":          schedule.Route,
			"vessel":         schedule.Vessel,
			"departure_time": schedule.DepartureTime,
			"arrival_time":   schedule.ArrivalTime,
			"time_display":   schedule.TimeDisplay,
			"days":           schedule.Days,
			"status":         schedule.Status,
			"sort_order":     schedule.SortOrder,
		})
	if result.Error != nil {
		return fmt.Errorf("update schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus stores a manual status such as Cancelled or Delayed.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	result := s.db.WithContext(ctx).Model(&models.Schedule{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("set schedule status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Schedule{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Board returns the departures running on now's weekday with their derived
// real-time status, ready for the kiosk display.
func (s *Service) Board(ctx context.Context, now time.Time, boardingTime, lastCallTime int) ([]BoardEntry, error) {
	schedules, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	weekday := now.Weekday().String()
	board := make([]BoardEntry, 0, len(schedules))
	for _, schedule := range schedules {
		if !schedule.Days.Contains(weekday) {
			continue
		}
		// Rows imported before departure_time existed only carry the
		// rendered display.
		departure := schedule.DepartureTime
		if departure == "" {
			departure = schedule.TimeDisplay
		}
		board = append(board, BoardEntry{
			Schedule:       schedule,
			RealTimeStatus: RealTimeStatus(departure, schedule.Status, boardingTime, lastCallTime, now),
		})
	}
	return board, nil
}
