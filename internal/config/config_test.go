/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setRequired(t *testing.T) {
	t.Setenv("PORTKIOSK_DB_DSN", "host=localhost dbname=portkiosk")
	t.Setenv("PORTKIOSK_JWT_SIGNING_KEY", "test-signing-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.DBBackend != DatabasePostgres {
		t.Errorf("DBBackend = %q, want postgres", cfg.DBBackend)
	}
	if cfg.BusBackend != BusMemory {
		t.Errorf("BusBackend = %q, want memory", cfg.BusBackend)
	}
	if cfg.InterstitialInterval != 3 {
		t.Errorf("InterstitialInterval = %d, want 3", cfg.InterstitialInterval)
	}
}

func TestLoadMissingDSN(t *testing.T) {
	t.Setenv("PORTKIOSK_DB_DSN", "")
	t.Setenv("PORTKIOSK_JWT_SIGNING_KEY", "k")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with empty DSN should fail")
	}
}

func TestLoadMissingSigningKey(t *testing.T) {
	t.Setenv("PORTKIOSK_DB_DSN", "file::memory:")
	t.Setenv("PORTKIOSK_JWT_SIGNING_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with empty signing key should fail")
	}
}

func TestLoadInvalidBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("PORTKIOSK_DB_BACKEND", "oracle")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with unsupported backend should fail")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORTKIOSK_HTTP_PORT", "9090")
	t.Setenv("PORTKIOSK_DB_BACKEND", "sqlite")
	t.Setenv("PORTKIOSK_BUS_BACKEND", "nats")
	t.Setenv("PORTKIOSK_TRACING_ENABLED", "true")
	t.Setenv("PORTKIOSK_TRACING_SAMPLE_RATE", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.DBBackend != DatabaseSQLite {
		t.Errorf("DBBackend = %q, want sqlite", cfg.DBBackend)
	}
	if cfg.BusBackend != BusNATS {
		t.Errorf("BusBackend = %q, want nats", cfg.BusBackend)
	}
	if !cfg.TracingEnabled {
		t.Error("TracingEnabled = false, want true")
	}
	if cfg.TracingSampleRate != 0.25 {
		t.Errorf("TracingSampleRate = %v, want 0.25", cfg.TracingSampleRate)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portkiosk.yaml")
	data := []byte("http_port: 8181\ndb_dsn: \"file::memory:\"\njwt_signing_key: file-key\ndefault_kiosk_id: pier-7\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORTKIOSK_CONFIG_FILE", path)
	t.Setenv("PORTKIOSK_DB_DSN", "")
	t.Setenv("PORTKIOSK_JWT_SIGNING_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != 8181 {
		t.Errorf("HTTPPort = %d, want 8181", cfg.HTTPPort)
	}
	if cfg.DefaultKioskID != "pier-7" {
		t.Errorf("DefaultKioskID = %q, want pier-7", cfg.DefaultKioskID)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portkiosk.yaml")
	data := []byte("http_port: 8181\ndb_dsn: \"file::memory:\"\njwt_signing_key: file-key\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORTKIOSK_CONFIG_FILE", path)
	t.Setenv("PORTKIOSK_HTTP_PORT", "7070")
	t.Setenv("PORTKIOSK_DB_DSN", "")
	t.Setenv("PORTKIOSK_JWT_SIGNING_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != 7070 {
		t.Errorf("HTTPPort = %d, want 7070", cfg.HTTPPort)
	}
}
