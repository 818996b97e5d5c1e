/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Event bus backend selection.
type BusBackend string

const (
	BusMemory BusBackend = "memory"
	BusRedis  BusBackend = "redis"
	BusNATS   BusBackend = "nats"
)

// Config covers process level configuration read from an optional YAML file
// and environment variables. Environment always wins over the file.
type Config struct {
	Environment string          `yaml:"environment"`
	HTTPBind    string          `yaml:"http_bind"`
	HTTPPort    int             `yaml:"http_port"`
	BaseURL     string          `yaml:"base_url"`
	DBBackend   DatabaseBackend `yaml:"db_backend"`
	DBDSN       string          `yaml:"db_dsn"`
	MediaRoot   string          `yaml:"media_root"`

	JWTSigningKey string `yaml:"jwt_signing_key"`

	// Kiosk behaviour
	DefaultKioskID       string        `yaml:"default_kiosk_id"`
	CampaignSweepPeriod  time.Duration `yaml:"campaign_sweep_period"`
	InterstitialInterval int           `yaml:"interstitial_interval"` // fallback ad interval when a campaign sets none

	// S3 object storage configuration for uploaded playlist media
	S3AccessKeyID     string `yaml:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key"`
	S3Region          string `yaml:"s3_region"`
	S3Bucket          string `yaml:"s3_bucket"`
	S3Endpoint        string `yaml:"s3_endpoint"`
	S3PublicBaseURL   string `yaml:"s3_public_base_url"`
	S3UsePathStyle    bool   `yaml:"s3_use_path_style"`

	// Tracing configuration
	TracingEnabled    bool    `yaml:"tracing_enabled"`
	OTLPEndpoint      string  `yaml:"otlp_endpoint"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate"`

	// Event bus / multi-instance configuration
	BusBackend    BusBackend `yaml:"bus_backend"`
	RedisAddr     string     `yaml:"redis_addr"`
	RedisPassword string     `yaml:"redis_password"`
	RedisDB       int        `yaml:"redis_db"`
	NATSURL       string     `yaml:"nats_url"`
	InstanceID    string     `yaml:"instance_id"`

	// Cache configuration
	CacheEnabled bool `yaml:"cache_enabled"`
}

// Load reads the optional config file, applies environment overrides and
// defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:          "development",
		HTTPBind:             "0.0.0.0",
		HTTPPort:             8080,
		DBBackend:            DatabasePostgres,
		MediaRoot:            "./media",
		DefaultKioskID:       "default",
		CampaignSweepPeriod:  time.Minute,
		InterstitialInterval: 3,
		S3Region:             "us-east-1",
		OTLPEndpoint:         "localhost:4317",
		TracingSampleRate:    1.0,
		BusBackend:           BusMemory,
		RedisAddr:            "localhost:6379",
		NATSURL:              "nats://localhost:4222",
		CacheEnabled:         true,
	}

	if path := os.Getenv("PORTKIOSK_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Environment = getEnv("PORTKIOSK_ENV", cfg.Environment)
	cfg.HTTPBind = getEnv("PORTKIOSK_HTTP_BIND", cfg.HTTPBind)
	cfg.HTTPPort = getEnvInt("PORTKIOSK_HTTP_PORT", cfg.HTTPPort)
	cfg.BaseURL = getEnv("PORTKIOSK_BASE_URL", cfg.BaseURL)
	cfg.DBBackend = DatabaseBackend(getEnv("PORTKIOSK_DB_BACKEND", string(cfg.DBBackend)))
	cfg.DBDSN = getEnv("PORTKIOSK_DB_DSN", cfg.DBDSN)
	cfg.MediaRoot = getEnv("PORTKIOSK_MEDIA_ROOT", cfg.MediaRoot)
	cfg.JWTSigningKey = getEnv("PORTKIOSK_JWT_SIGNING_KEY", cfg.JWTSigningKey)
	cfg.DefaultKioskID = getEnv("PORTKIOSK_DEFAULT_KIOSK_ID", cfg.DefaultKioskID)
	if mins := getEnvInt("PORTKIOSK_CAMPAIGN_SWEEP_MINUTES", 0); mins > 0 {
		cfg.CampaignSweepPeriod = time.Duration(mins) * time.Minute
	}
	cfg.InterstitialInterval = getEnvInt("PORTKIOSK_INTERSTITIAL_INTERVAL", cfg.InterstitialInterval)

	cfg.S3AccessKeyID = getEnvAny([]string{"PORTKIOSK_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, cfg.S3AccessKeyID)
	cfg.S3SecretAccessKey = getEnvAny([]string{"PORTKIOSK_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, cfg.S3SecretAccessKey)
	cfg.S3Region = getEnvAny([]string{"PORTKIOSK_S3_REGION", "AWS_REGION"}, cfg.S3Region)
	cfg.S3Bucket = getEnv("PORTKIOSK_S3_BUCKET", cfg.S3Bucket)
	cfg.S3Endpoint = getEnv("PORTKIOSK_S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3PublicBaseURL = getEnv("PORTKIOSK_S3_PUBLIC_BASE_URL", cfg.S3PublicBaseURL)
	cfg.S3UsePathStyle = getEnvBool("PORTKIOSK_S3_USE_PATH_STYLE", cfg.S3UsePathStyle)

	cfg.TracingEnabled = getEnvBool("PORTKIOSK_TRACING_ENABLED", cfg.TracingEnabled)
	cfg.OTLPEndpoint = getEnv("PORTKIOSK_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.TracingSampleRate = getEnvFloat("PORTKIOSK_TRACING_SAMPLE_RATE", cfg.TracingSampleRate)

	cfg.BusBackend = BusBackend(getEnv("PORTKIOSK_BUS_BACKEND", string(cfg.BusBackend)))
	cfg.RedisAddr = getEnv("PORTKIOSK_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("PORTKIOSK_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("PORTKIOSK_REDIS_DB", cfg.RedisDB)
	cfg.NATSURL = getEnv("PORTKIOSK_NATS_URL", cfg.NATSURL)
	cfg.InstanceID = getEnv("PORTKIOSK_INSTANCE_ID", cfg.InstanceID)
	cfg.CacheEnabled = getEnvBool("PORTKIOSK_CACHE_ENABLED", cfg.CacheEnabled)

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("PORTKIOSK_DB_DSN must be provided")
	}

	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("PORTKIOSK_JWT_SIGNING_KEY must be provided")
	}

	if cfg.BusBackend != BusMemory && cfg.BusBackend != BusRedis && cfg.BusBackend != BusNATS {
		return nil, fmt.Errorf("unsupported bus backend %q", cfg.BusBackend)
	}

	if cfg.InterstitialInterval < 1 {
		cfg.InterstitialInterval = 3
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
