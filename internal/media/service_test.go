/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestBuildMediaPath(t *testing.T) {
	got := buildMediaPath("playlist", "abcdef12", ".mp4")
	want := filepath.Join("playlist", "ab", "cd", "abcdef12.mp4")
	if got != want {
		t.Errorf("buildMediaPath() = %q, want %q", got, want)
	}

	short := buildMediaPath("playlist", "ab", ".mp4")
	if short != filepath.Join("playlist", "ab.mp4") {
		t.Errorf("buildMediaPath() short id = %q", short)
	}
}

func TestFilesystemStoreAndDelete(t *testing.T) {
	root := t.TempDir()
	storage := NewFilesystemStorage(root, zerolog.Nop())
	ctx := context.Background()

	path, err := storage.Store(ctx, "playlist", "deadbeef", ".mp4", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	full := filepath.Join(root, path)
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("stored content = %q", data)
	}

	if url := storage.URL(path); !strings.HasPrefix(url, "/media/") {
		t.Errorf("URL() = %q, want /media/ prefix", url)
	}

	if err := storage.Delete(ctx, path); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Error("file still present after delete")
	}

	// deleting again is not an error
	if err := storage.Delete(ctx, path); err != nil {
		t.Errorf("Delete() of missing file error = %v", err)
	}
}

func TestFilesystemCheckAccess(t *testing.T) {
	storage := NewFilesystemStorage(t.TempDir(), zerolog.Nop())
	if err := storage.CheckAccess(context.Background()); err != nil {
		t.Errorf("CheckAccess() error = %v", err)
	}

	missing := NewFilesystemStorage("/no/such/dir", zerolog.Nop())
	if err := missing.CheckAccess(context.Background()); err == nil {
		t.Error("CheckAccess() on missing root should fail")
	}
}
