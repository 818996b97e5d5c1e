/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package media stores uploaded playlist and campaign creatives on the
// filesystem or in S3-compatible object storage.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborlight/portkiosk/internal/config"
)

// Storage abstracts file storage operations. The kind groups files by what
// they belong to, e.g. "playlist" or "campaigns/<id>".
type Storage interface {
	Store(ctx context.Context, kind, mediaID, extension string, file io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
	CheckAccess(ctx context.Context) error
}

// Service manages media file storage.
type Service struct {
	storage Storage
	logger  zerolog.Logger
}

// NewService picks S3 storage when a bucket is configured, filesystem
// storage otherwise.
func NewService(cfg *config.Config, logger zerolog.Logger) (*Service, error) {
	logger = logger.With().Str("component", "media").Logger()

	var storage Storage
	if cfg.S3Bucket != "" {
		s3cfg := S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			UsePathStyle:    cfg.S3UsePathStyle,
		}
		if s3cfg.AccessKeyID == "" || s3cfg.SecretAccessKey == "" {
			logger.Warn().Msg("S3 credentials not configured, some operations may fail")
		}
		s3Storage, err := NewS3Storage(context.Background(), s3cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize S3 storage: %w", err)
		}
		storage = s3Storage
	} else {
		storage = NewFilesystemStorage(cfg.MediaRoot, logger)
	}

	return &Service{storage: storage, logger: logger}, nil
}

// Store saves an uploaded file and returns the storage path. The extension
// is taken from the uploaded filename.
func (s *Service) Store(ctx context.Context, kind, mediaID, filename string, file io.Reader) (string, error) {
	extension := filepath.Ext(filename)
	path, err := s.storage.Store(ctx, kind, mediaID, extension, file)
	if err != nil {
		s.logger.Error().Err(err).
			Str("kind", kind).
			Str("media_id", mediaID).
			Msg("media store failed")
		return "", fmt.Errorf("store media: %w", err)
	}

	s.logger.Info().
		Str("kind", kind).
		Str("media_id", mediaID).
		Str("path", path).
		Msg("media stored")
	return path, nil
}

// Delete removes a media file from storage.
func (s *Service) Delete(ctx context.Context, path string) error {
	if err := s.storage.Delete(ctx, path); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("media delete failed")
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}

// URL returns the URL kiosks use to fetch a stored file.
func (s *Service) URL(path string) string {
	return s.storage.URL(path)
}

// CheckStorageAccess verifies that the storage backend is reachable.
func (s *Service) CheckStorageAccess() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.storage.CheckAccess(ctx)
}

// buildMediaPath shards files into two-level directories so one directory
// never holds every upload.
func buildMediaPath(kind, mediaID, extension string) string {
	if len(mediaID) < 4 {
		return filepath.Join(kind, mediaID+extension)
	}
	return filepath.Join(kind, mediaID[0:2], mediaID[2:4], mediaID+extension)
}
