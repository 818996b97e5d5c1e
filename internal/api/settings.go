/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/settings"
)

func (a *API) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.settings.Load(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("settings load failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (a *API) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.BoardingTime <= 0 || req.LastCallTime <= 0 || req.FadeInterval <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_minutes")
		return
	}
	if req.LastCallTime >= req.BoardingTime {
		writeError(w, http.StatusBadRequest, "last_call_exceeds_boarding")
		return
	}

	if err := a.settings.Save(r.Context(), &req); err != nil {
		a.logger.Error().Err(err).Msg("settings save failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.kiosk.InvalidateSettings(r.Context())
	a.publish(r.Context(), events.TypeSettingsUpdated, nil)
	writeJSON(w, http.StatusOK, &req)
}
