/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package version

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.2.0", "1.1.9", 1},
		{"v1.4.0", "1.4.0", 0},
		{"1.4", "1.4.1", -1},
		{"2.0.0", "1.99.99", 1},
	}

	for _, tt := range tests {
		if got := compareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTruncateNotes(t *testing.T) {
	if got := truncateNotes("short note", 200); got != "short note" {
		t.Errorf("got %q", got)
	}
	if got := truncateNotes("first line\nsecond line", 200); got != "first line" {
		t.Errorf("got %q, want first line only", got)
	}
	long := truncateNotes(string(make([]byte, 300)), 20)
	if len(long) != 20 {
		t.Errorf("len = %d, want 20", len(long))
	}
}

func TestInfoDefaults(t *testing.T) {
	c := &Checker{}
	info := c.Info()
	if info.CurrentVersion != Version {
		t.Errorf("current = %q, want %q", info.CurrentVersion, Version)
	}
	if info.UpdateAvailable {
		t.Error("no check yet, update should not be available")
	}
}
