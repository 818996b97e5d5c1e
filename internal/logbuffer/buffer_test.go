/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logbuffer

import (
	"fmt"
	"testing"
	"time"
)

func TestRingEviction(t *testing.T) {
	b := New(3)
	for i := 0; i < 5; i++ {
		b.Add(Entry{Message: fmt.Sprintf("msg-%d", i)})
	}

	all := b.All()
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Message != "msg-2" || all[2].Message != "msg-4" {
		t.Errorf("got %q..%q, want msg-2..msg-4", all[0].Message, all[2].Message)
	}
}

func TestQueryFilters(t *testing.T) {
	b := New(10)
	base := time.Now()
	b.Add(Entry{Timestamp: base, Level: "info", Component: "api", Message: "request served"})
	b.Add(Entry{Timestamp: base.Add(time.Second), Level: "error", Component: "ads", Message: "sweep failed"})
	b.Add(Entry{Timestamp: base.Add(2 * time.Second), Level: "info", Component: "ads", Message: "sweep ok"})

	tests := []struct {
		name   string
		params QueryParams
		want   int
	}{
		{"all", QueryParams{}, 3},
		{"by level", QueryParams{Level: "error"}, 1},
		{"by component", QueryParams{Component: "ads"}, 2},
		{"by search", QueryParams{Search: "SWEEP"}, 2},
		{"since", QueryParams{Since: base.Add(time.Second)}, 2},
		{"limit", QueryParams{Limit: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Query(tt.params); len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestQueryNewestFirst(t *testing.T) {
	b := New(10)
	b.Add(Entry{Message: "first"})
	b.Add(Entry{Message: "second"})

	got := b.Query(QueryParams{})
	if got[0].Message != "second" {
		t.Errorf("got %q first, want second", got[0].Message)
	}
}

func TestWriterParsesZerologLines(t *testing.T) {
	b := New(10)
	w := NewWriter(b, nil)

	line := `{"level":"warn","component":"webhooks","target":"abc","time":"2026-08-31T10:00:00Z","message":"delivery failed"}` + "\n"
	if _, err := w.Write([]byte(line)); err != nil {
		t.Fatalf("write: %v", err)
	}

	all := b.All()
	if len(all) != 1 {
		t.Fatalf("len = %d, want 1", len(all))
	}
	entry := all[0]
	if entry.Level != "warn" || entry.Component != "webhooks" || entry.Message != "delivery failed" {
		t.Errorf("parsed entry = %+v", entry)
	}
	if entry.Fields["target"] != "abc" {
		t.Errorf("target field = %v, want abc", entry.Fields["target"])
	}
	if entry.Timestamp.UTC().Hour() != 10 {
		t.Errorf("timestamp = %v, want parsed from line", entry.Timestamp)
	}
}

func TestWriterIgnoresNonJSON(t *testing.T) {
	b := New(10)
	w := NewWriter(b, nil)

	if _, err := w.Write([]byte("plain text line\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(b.All()) != 0 {
		t.Error("non-JSON line should not be buffered")
	}
}

func TestStats(t *testing.T) {
	b := New(10)
	b.Add(Entry{Level: "info"})
	b.Add(Entry{Level: "info"})
	b.Add(Entry{Level: "error"})

	stats := b.Stats()
	if stats.Count != 3 || stats.LevelCount["info"] != 2 || stats.LevelCount["error"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
