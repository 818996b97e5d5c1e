/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/harborlight/portkiosk/internal/ads"
	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/models"
)

func (a *API) kioskID(r *http.Request) string {
	if id := r.URL.Query().Get("kioskId"); id != "" {
		return id
	}
	return a.cfg.DefaultKioskID
}

func (a *API) handleKioskGet(w http.ResponseWriter, r *http.Request) {
	kioskID := a.kioskID(r)
	totalVideosPlayed, _ := strconv.Atoi(r.URL.Query().Get("totalVideosPlayed"))

	payload, err := a.kiosk.Build(r.Context(), kioskID, time.Now(), totalVideosPlayed)
	if err != nil {
		a.logger.Error().Err(err).Str("kiosk_id", kioskID).Msg("kiosk payload build failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

type videoControlRequest struct {
	KioskID      string `json:"kioskId"`
	CurrentIndex int    `json:"currentIndex"`
	IsPlaying    bool   `json:"isPlaying"`
	IsLooping    bool   `json:"isLooping"`
	Volume       *int   `json:"volume"`
}

func (a *API) handleKioskUpdateControl(w http.ResponseWriter, r *http.Request) {
	var req videoControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.KioskID == "" {
		req.KioskID = a.cfg.DefaultKioskID
	}
	if req.CurrentIndex < 0 {
		writeError(w, http.StatusBadRequest, "invalid_index")
		return
	}
	if req.Volume != nil && (*req.Volume < 0 || *req.Volume > 100) {
		writeError(w, http.StatusBadRequest, "invalid_volume")
		return
	}

	control := models.NewVideoControl(req.KioskID)
	control.CurrentIndex = req.CurrentIndex
	control.IsPlaying = req.IsPlaying
	control.IsLooping = req.IsLooping
	if req.Volume != nil {
		control.Volume = *req.Volume
	}

	control, err := a.kiosk.UpdateVideoControl(r.Context(), control)
	if err != nil {
		a.logger.Error().Err(err).Str("kiosk_id", req.KioskID).Msg("video control update failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, control)
}

type impressionRequest struct {
	CampaignID string `json:"campaignId"`
	MediaID    string `json:"mediaId"`
	KioskID    string `json:"kioskId"`
	Duration   int    `json:"duration"`
	Completed  bool   `json:"completed"`
	Skipped    bool   `json:"skipped"`
}

func (a *API) handleKioskImpression(w http.ResponseWriter, r *http.Request) {
	var req impressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.CampaignID == "" {
		writeError(w, http.StatusBadRequest, "missing_campaign_id")
		return
	}
	if req.KioskID == "" {
		req.KioskID = a.cfg.DefaultKioskID
	}

	impression := models.NewAdImpression(req.CampaignID, req.MediaID, req.KioskID, time.Now())
	impression.Duration = req.Duration
	impression.Completed = req.Completed
	impression.Skipped = req.Skipped

	if err := a.ads.RecordImpression(r.Context(), impression); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "unknown_campaign")
			return
		}
		a.logger.Error().Err(err).Str("campaign_id", req.CampaignID).Msg("impression record failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.publish(r.Context(), events.TypeImpressionCreated, map[string]any{
		"campaignId": req.CampaignID,
		"kioskId":    req.KioskID,
	})
	writeJSON(w, http.StatusCreated, impression)
}
