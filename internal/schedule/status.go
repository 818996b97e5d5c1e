/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Board statuses.
const (
	StatusOntime     = "Ontime"
	StatusBoarding   = "Boarding"
	StatusLastCalled = "Last Called"
	StatusDeparted   = "Departed"
	StatusCancelled  = "Cancelled"
	StatusDelayed    = "Delayed"
)

// parseDeparture parses a clock string into a time on the same day as ref.
// Both the 24-hour form "14:30" and the display form "02:30 PM" are
// accepted.
func parseDeparture(display string, ref time.Time) (time.Time, error) {
	fields := strings.Fields(strings.TrimSpace(display))
	if len(fields) != 1 && len(fields) != 2 {
		return time.Time{}, fmt.Errorf("malformed departure time %q", display)
	}
	parts := strings.Split(fields[0], ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("malformed departure time %q", display)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed departure hour %q", display)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed departure minute %q", display)
	}
	if len(fields) == 2 {
		switch strings.ToUpper(fields[1]) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		default:
			return time.Time{}, fmt.Errorf("malformed departure period %q", display)
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("departure time %q out of range", display)
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location()), nil
}

// Format24To12 renders a 24-hour "HH:MM" clock as "hh:MM AM/PM". Input that
// does not look like a clock comes back unchanged.
func Format24To12(clock string) string {
	hour, minute, ok := splitClock(clock)
	if !ok {
		return clock
	}
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%02d:%02d %s", hour12, minute, period)
}

// DisplayWindow renders the board's departure window from the stored
// 24-hour times.
func DisplayWindow(departure, arrival string) string {
	out := Format24To12(departure)
	if arrival != "" {
		out += " - " + Format24To12(arrival)
	}
	return out
}

// ValidClock reports whether clock is a 24-hour "HH:MM" value.
func ValidClock(clock string) bool {
	_, _, ok := splitClock(clock)
	return ok
}

func splitClock(clock string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// RealTimeStatus derives the board status for a departure. Manually set
// Cancelled and Delayed statuses always win; otherwise the status follows
// how close the departure is: within lastCallTime minutes is Last Called,
// within boardingTime minutes is Boarding, past departure is Departed.
func RealTimeStatus(timeDisplay, manualStatus string, boardingTime, lastCallTime int, now time.Time) string {
	if manualStatus == StatusCancelled || manualStatus == StatusDelayed {
		return manualStatus
	}

	departureDisplay, _, _ := strings.Cut(timeDisplay, " - ")
	departure, err := parseDeparture(departureDisplay, now)
	if err != nil {
		return StatusOntime
	}

	diff := departure.Sub(now).Minutes()
	switch {
	case diff > 0 && diff <= float64(lastCallTime):
		return StatusLastCalled
	case diff > float64(lastCallTime) && diff <= float64(boardingTime):
		return StatusBoarding
	case diff <= 0:
		return StatusDeparted
	}
	return StatusOntime
}
