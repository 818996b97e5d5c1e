/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/models"
)

type webhookRequest struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Secret string `json:"secret"`
	Events string `json:"events"`
	Active *bool  `json:"active"`
}

var knownEventTypes = map[string]bool{
	events.TypeScheduleUpdated:   true,
	events.TypeMediaUpdated:      true,
	events.TypeSettingsUpdated:   true,
	events.TypeCampaignUpdated:   true,
	events.TypeImpressionCreated: true,
	events.TypeKioskRefresh:      true,
}

func (req *webhookRequest) validate() string {
	if req.Name == "" {
		return "name_required"
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "invalid_url"
	}
	for _, e := range strings.Split(req.Events, ",") {
		e = strings.TrimSpace(e)
		if e != "" && !knownEventTypes[e] {
			return "unknown_event_type"
		}
	}
	return ""
}

func (a *API) handleWebhooksList(w http.ResponseWriter, r *http.Request) {
	var targets []models.WebhookTarget
	if err := a.db.WithContext(r.Context()).Order("created_at").Find(&targets).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

func (a *API) handleWebhooksCreate(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	target := models.NewWebhookTarget(req.Name, req.URL)
	target.Secret = req.Secret
	target.Events = req.Events
	if req.Active != nil {
		target.Active = *req.Active
	}

	if err := a.db.WithContext(r.Context()).Create(target).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusCreated, target)
}

func (a *API) handleWebhooksUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "webhookID")

	var target models.WebhookTarget
	if err := a.db.WithContext(r.Context()).First(&target, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "webhook_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	target.Name = req.Name
	target.URL = req.URL
	target.Events = req.Events
	if req.Secret != "" {
		target.Secret = req.Secret
	}
	if req.Active != nil {
		target.Active = *req.Active
	}

	if err := a.db.WithContext(r.Context()).Save(&target).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (a *API) handleWebhooksDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "webhookID")
	res := a.db.WithContext(r.Context()).Delete(&models.WebhookTarget{}, "id = ?", id)
	if res.Error != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "webhook_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleWebhooksTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "webhookID")

	var target models.WebhookTarget
	if err := a.db.WithContext(r.Context()).First(&target, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "webhook_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	if err := a.webhooks.Test(r.Context(), &target); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":  "delivery_failed",
			"detail": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "delivered"})
}
