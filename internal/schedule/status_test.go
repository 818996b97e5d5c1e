/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"testing"
	"time"
)

func TestRealTimeStatus(t *testing.T) {
	// Reference clock: 09:00 local time.
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		timeDisplay  string
		manualStatus string
		want         string
	}{
		{"manual cancelled wins", "09:05 AM - 09:45 AM", StatusCancelled, StatusCancelled},
		{"manual delayed wins", "09:05 AM - 09:45 AM", StatusDelayed, StatusDelayed},
		{"well before departure", "11:00 AM - 11:45 AM", StatusOntime, StatusOntime},
		{"inside boarding window", "09:25 AM - 10:00 AM", StatusOntime, StatusBoarding},
		{"boarding window edge", "09:30 AM - 10:00 AM", StatusOntime, StatusBoarding},
		{"inside last call window", "09:10 AM - 09:45 AM", StatusOntime, StatusLastCalled},
		{"last call edge", "09:15 AM - 09:45 AM", StatusOntime, StatusLastCalled},
		{"at departure", "09:00 AM - 09:45 AM", StatusOntime, StatusDeparted},
		{"after departure", "08:30 AM - 09:15 AM", StatusOntime, StatusDeparted},
		{"noon departure", "12:10 PM - 12:55 PM", StatusOntime, StatusOntime},
		{"past midnight departure", "12:05 AM - 12:50 AM", StatusOntime, StatusDeparted},
		{"24h departure inside boarding", "09:25", StatusOntime, StatusBoarding},
		{"24h departure after departure", "08:30", StatusOntime, StatusDeparted},
		{"malformed display falls back", "sometime later", StatusOntime, StatusOntime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RealTimeStatus(tt.timeDisplay, tt.manualStatus, 30, 15, now)
			if got != tt.want {
				t.Errorf("RealTimeStatus(%q) = %q, want %q", tt.timeDisplay, got, tt.want)
			}
		})
	}
}

func TestParseDeparture(t *testing.T) {
	ref := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		display string
		hour    int
		minute  int
	}{
		{"09:30 AM", 9, 30},
		{"12:00 AM", 0, 0},
		{"12:00 PM", 12, 0},
		{"11:59 PM", 23, 59},
		{"01:05 pm", 13, 5},
		{"09:30", 9, 30},
		{"14:30", 14, 30},
	}
	for _, tt := range tests {
		got, err := parseDeparture(tt.display, ref)
		if err != nil {
			t.Errorf("parseDeparture(%q) error = %v", tt.display, err)
			continue
		}
		if got.Hour() != tt.hour || got.Minute() != tt.minute {
			t.Errorf("parseDeparture(%q) = %02d:%02d, want %02d:%02d", tt.display, got.Hour(), got.Minute(), tt.hour, tt.minute)
		}
	}

	for _, bad := range []string{"", "9 AM", "aa:bb AM", "09:30 XM", "25:00"} {
		if _, err := parseDeparture(bad, ref); err == nil {
			t.Errorf("parseDeparture(%q) should fail", bad)
		}
	}
}

func TestFormat24To12(t *testing.T) {
	tests := []struct {
		clock string
		want  string
	}{
		{"00:00", "12:00 AM"},
		{"09:30", "09:30 AM"},
		{"12:00", "12:00 PM"},
		{"13:05", "01:05 PM"},
		{"23:59", "11:59 PM"},
		{"not a clock", "not a clock"},
	}
	for _, tt := range tests {
		if got := Format24To12(tt.clock); got != tt.want {
			t.Errorf("Format24To12(%q) = %q, want %q", tt.clock, got, tt.want)
		}
	}
}

func TestDisplayWindow(t *testing.T) {
	if got := DisplayWindow("09:30", "10:15"); got != "09:30 AM - 10:15 AM" {
		t.Errorf("DisplayWindow() = %q", got)
	}
	if got := DisplayWindow("18:00", ""); got != "06:00 PM" {
		t.Errorf("DisplayWindow() without arrival = %q", got)
	}
}

func TestValidClock(t *testing.T) {
	for _, good := range []string{"00:00", "09:30", "23:59"} {
		if !ValidClock(good) {
			t.Errorf("ValidClock(%q) = false", good)
		}
	}
	for _, bad := range []string{"", "24:00", "09:60", "9", "09:30 AM"} {
		if ValidClock(bad) {
			t.Errorf("ValidClock(%q) = true", bad)
		}
	}
}
