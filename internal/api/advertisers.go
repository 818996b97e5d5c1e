/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborlight/portkiosk/internal/ads"
	"github.com/harborlight/portkiosk/internal/models"
)

type advertiserRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Notes       string `json:"notes"`
	Status      string `json:"status"`
}

func (a *API) handleAdvertisersList(w http.ResponseWriter, r *http.Request) {
	advertisers, err := a.ads.ListAdvertisers(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("advertisers list failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, advertisers)
}

func (a *API) handleAdvertisersGet(w http.ResponseWriter, r *http.Request) {
	advertiser, err := a.ads.GetAdvertiser(r.Context(), chi.URLParam(r, "advertiserID"))
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "advertiser_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, advertiser)
}

func (a *API) handleAdvertisersCreate(w http.ResponseWriter, r *http.Request) {
	var req advertiserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing_name")
		return
	}

	advertiser := models.NewAdvertiser(req.Name, req.ContactName, req.Email)
	advertiser.Phone = req.Phone
	advertiser.Company = req.Company
	advertiser.Notes = req.Notes
	if req.Status != "" {
		advertiser.Status = req.Status
	}

	if err := a.ads.CreateAdvertiser(r.Context(), advertiser); err != nil {
		a.logger.Error().Err(err).Msg("advertiser create failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusCreated, advertiser)
}

func (a *API) handleAdvertisersUpdate(w http.ResponseWriter, r *http.Request) {
	var req advertiserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	advertiser := &models.Advertiser{
		ID:          chi.URLParam(r, "advertiserID"),
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		Notes:       req.Notes,
		Status:      req.Status,
	}
	if err := a.ads.UpdateAdvertiser(r.Context(), advertiser); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "advertiser_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, advertiser)
}

func (a *API) handleAdvertisersDelete(w http.ResponseWriter, r *http.Request) {
	err := a.ads.DeleteAdvertiser(r.Context(), chi.URLParam(r, "advertiserID"))
	if err != nil {
		switch {
		case errors.Is(err, ads.ErrNotFound):
			writeError(w, http.StatusNotFound, "advertiser_not_found")
		case errors.Is(err, ads.ErrHasCampaigns):
			writeError(w, http.StatusConflict, "advertiser_has_campaigns")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
