/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FilesystemStorage implements Storage on the local filesystem.
type FilesystemStorage struct {
	rootDir string
	logger  zerolog.Logger
}

func NewFilesystemStorage(rootDir string, logger zerolog.Logger) *FilesystemStorage {
	return &FilesystemStorage{
		rootDir: rootDir,
		logger:  logger,
	}
}

// Store saves a file under the media root and returns its relative path.
func (fs *FilesystemStorage) Store(ctx context.Context, kind, mediaID, extension string, file io.Reader) (string, error) {
	relativePath := buildMediaPath(kind, mediaID, extension)
	fullPath := filepath.Join(fs.rootDir, relativePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("create directories: %w", err)
	}

	dest, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	fs.logger.Debug().
		Str("path", fullPath).
		Str("media_id", mediaID).
		Msg("filesystem storage: file stored")

	// The relative path goes into the database; the media root is joined
	// back on when serving.
	return relativePath, nil
}

// Delete removes a file from the filesystem. A missing file is not an
// error.
func (fs *FilesystemStorage) Delete(ctx context.Context, relativePath string) error {
	fullPath := filepath.Join(fs.rootDir, relativePath)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// URL maps the stored path onto the static file route.
func (fs *FilesystemStorage) URL(relativePath string) string {
	return "/media/" + path.Clean(filepath.ToSlash(relativePath))
}

// CheckAccess verifies the media root exists and is a directory.
func (fs *FilesystemStorage) CheckAccess(ctx context.Context) error {
	info, err := os.Stat(fs.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("media root does not exist: %s", fs.rootDir)
		}
		return fmt.Errorf("cannot access media root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("media root is not a directory: %s", fs.rootDir)
	}
	return nil
}
