/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/kiosk"
	"github.com/harborlight/portkiosk/internal/models"
)

// maxUploadBytes bounds a single creative upload.
const maxUploadBytes = 512 << 20

type mediaRequest struct {
	Title     string `json:"title"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	Duration  int    `json:"duration"`
	SortOrder int    `json:"sortOrder"`
	Enabled   *bool  `json:"enabled"`
}

func validMediaType(t string) bool {
	return t == "video" || t == "image"
}

func (a *API) handleMediaList(w http.ResponseWriter, r *http.Request) {
	items, err := a.kiosk.ListMedia(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("media list failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleMediaGet(w http.ResponseWriter, r *http.Request) {
	item, err := a.kiosk.GetMedia(r.Context(), chi.URLParam(r, "mediaID"))
	if err != nil {
		if errors.Is(err, kiosk.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *API) handleMediaCreate(w http.ResponseWriter, r *http.Request) {
	var req mediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !validMediaType(req.Type) || req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid_media")
		return
	}

	item := models.NewMediaItem(req.Title, req.Type, req.URL, req.Duration)
	item.SortOrder = req.SortOrder
	if req.Enabled != nil {
		item.Enabled = *req.Enabled
	}
	if err := a.kiosk.CreateMedia(r.Context(), item); err != nil {
		a.logger.Error().Err(err).Msg("media create failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.publish(r.Context(), events.TypeMediaUpdated, map[string]any{"mediaId": item.ID})
	writeJSON(w, http.StatusCreated, item)
}

// handleMediaUpload accepts a multipart upload, stores the file and creates
// the playlist item pointing at it.
func (a *API) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_multipart")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file")
		return
	}
	defer file.Close()

	mediaType := r.FormValue("type")
	if mediaType == "" {
		mediaType = inferMediaType(header.Filename)
	}
	if !validMediaType(mediaType) {
		writeError(w, http.StatusBadRequest, "invalid_media")
		return
	}

	id := uuid.NewString()
	path, err := a.media.Store(r.Context(), "playlist", id, header.Filename, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error")
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	item := models.NewMediaItem(title, mediaType, a.media.URL(path), 0)
	item.ID = id
	if err := a.kiosk.CreateMedia(r.Context(), item); err != nil {
		// keep storage consistent with the database
		_ = a.media.Delete(r.Context(), path)
		a.logger.Error().Err(err).Msg("media create after upload failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.publish(r.Context(), events.TypeMediaUpdated, map[string]any{"mediaId": item.ID})
	writeJSON(w, http.StatusCreated, item)
}

func inferMediaType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4", ".webm", ".mov", ".mkv":
		return "video"
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	}
	return ""
}

func (a *API) handleMediaUpdate(w http.ResponseWriter, r *http.Request) {
	var req mediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !validMediaType(req.Type) || req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid_media")
		return
	}

	item := &models.MediaItem{
		ID:        chi.URLParam(r, "mediaID"),
		Title:     req.Title,
		Type:      req.Type,
		URL:       req.URL,
		Duration:  req.Duration,
		SortOrder: req.SortOrder,
		Enabled:   req.Enabled == nil || *req.Enabled,
	}
	if err := a.kiosk.UpdateMedia(r.Context(), item); err != nil {
		if errors.Is(err, kiosk.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.publish(r.Context(), events.TypeMediaUpdated, map[string]any{"mediaId": item.ID})
	writeJSON(w, http.StatusOK, item)
}

func (a *API) handleMediaDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "mediaID")

	item, err := a.kiosk.GetMedia(r.Context(), id)
	if err != nil {
		if errors.Is(err, kiosk.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	if err := a.kiosk.DeleteMedia(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	// best-effort file cleanup for locally stored uploads
	if rel, ok := strings.CutPrefix(item.URL, "/media/"); ok {
		_ = a.media.Delete(r.Context(), rel)
	}

	a.publish(r.Context(), events.TypeMediaUpdated, map[string]any{"mediaId": id})
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

func (a *API) handleMediaReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "missing_ids")
		return
	}

	if err := a.kiosk.ReorderMedia(r.Context(), req.IDs); err != nil {
		if errors.Is(err, kiosk.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "unknown_media_id")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.publish(r.Context(), events.TypeMediaUpdated, nil)
	w.WriteHeader(http.StatusNoContent)
}
