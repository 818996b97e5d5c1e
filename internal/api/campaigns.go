/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborlight/portkiosk/internal/ads"
	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/models"
)

type campaignRequest struct {
	AdvertiserID         string    `json:"advertiserId"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	StartDate            time.Time `json:"startDate"`
	EndDate              time.Time `json:"endDate"`
	DisplayType          string    `json:"displayType"`
	FrequencyType        string    `json:"frequencyType"`
	FrequencyValue       int       `json:"frequencyValue"`
	InterstitialInterval int       `json:"interstitialInterval"`
	Priority             int       `json:"priority"`
	DailyRate            float64   `json:"dailyRate"`
	MonthlyRate          float64   `json:"monthlyRate"`
	BillingType          string    `json:"billingType"`
	Notes                string    `json:"notes"`
}

func (req *campaignRequest) validate() string {
	if req.Name == "" {
		return "missing_name"
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || req.EndDate.Before(req.StartDate) {
		return "invalid_flight_window"
	}
	switch req.DisplayType {
	case "", models.DisplayInterstitial, models.DisplayScheduled, models.DisplayMixed:
	default:
		return "invalid_display_type"
	}
	switch req.FrequencyType {
	case "", models.FrequencyInterval, models.FrequencyPerHour, models.FrequencyPerDay:
	default:
		return "invalid_frequency_type"
	}
	if req.FrequencyValue < 0 {
		return "invalid_frequency_value"
	}
	if req.InterstitialInterval < 0 {
		return "invalid_interstitial_interval"
	}
	switch req.BillingType {
	case "", models.BillingDaily, models.BillingMonthly:
	default:
		return "invalid_billing_type"
	}
	return ""
}

func (a *API) handleCampaignsList(w http.ResponseWriter, r *http.Request) {
	campaigns, err := a.ads.ListCampaigns(r.Context(), r.URL.Query().Get("status"), r.URL.Query().Get("advertiserId"))
	if err != nil {
		a.logger.Error().Err(err).Msg("campaigns list failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (a *API) handleCampaignsGet(w http.ResponseWriter, r *http.Request) {
	campaign, err := a.ads.GetCampaign(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (a *API) handleCampaignsCreate(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.AdvertiserID == "" {
		writeError(w, http.StatusBadRequest, "missing_advertiser_id")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	campaign := models.NewAdCampaign(req.AdvertiserID, req.Name, req.StartDate, req.EndDate)
	applyCampaignRequest(campaign, &req)

	if err := a.ads.CreateCampaign(r.Context(), campaign); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "unknown_advertiser")
			return
		}
		a.logger.Error().Err(err).Msg("campaign create failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func applyCampaignRequest(campaign *models.AdCampaign, req *campaignRequest) {
	if req.DisplayType != "" {
		campaign.DisplayType = req.DisplayType
	}
	if req.FrequencyType != "" {
		campaign.FrequencyType = req.FrequencyType
	}
	campaign.Description = req.Description
	campaign.FrequencyValue = req.FrequencyValue
	campaign.InterstitialInterval = req.InterstitialInterval
	campaign.Priority = req.Priority
	campaign.DailyRate = req.DailyRate
	campaign.MonthlyRate = req.MonthlyRate
	if req.BillingType != "" {
		campaign.BillingType = req.BillingType
	}
	campaign.Notes = req.Notes

	campaign.TotalCost = ads.Revenue(campaign.StartDate, campaign.EndDate, campaign.DailyRate, campaign.BillingType)
	if campaign.BillingType == models.BillingMonthly && campaign.MonthlyRate == 0 {
		campaign.MonthlyRate = campaign.DailyRate * float64(ads.FlightDays(campaign.StartDate, campaign.EndDate))
	}
}

func (a *API) handleCampaignsUpdate(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	campaign := &models.AdCampaign{
		ID:        chi.URLParam(r, "campaignID"),
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	applyCampaignRequest(campaign, &req)

	if err := a.ads.UpdateCampaign(r.Context(), campaign); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.campaignChanged(r, campaign.ID)
	writeJSON(w, http.StatusOK, campaign)
}

func (a *API) handleCampaignsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignID")
	if err := a.ads.DeleteCampaign(r.Context(), id); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.campaignChanged(r, id)
	w.WriteHeader(http.StatusNoContent)
}

// campaignChanged invalidates the cached campaign list and notifies kiosks.
func (a *API) campaignChanged(r *http.Request, campaignID string) {
	a.kiosk.InvalidateCampaigns(r.Context())
	a.publish(r.Context(), events.TypeCampaignUpdated, map[string]any{"campaignId": campaignID})
}

func (a *API) handleCampaignStatusAction(w http.ResponseWriter, r *http.Request, action func(string) (*models.AdCampaign, error)) {
	id := chi.URLParam(r, "campaignID")
	campaign, err := action(id)
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign_not_found")
			return
		}
		a.logger.Error().Err(err).Str("campaign_id", id).Msg("campaign status action failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.campaignChanged(r, id)
	writeJSON(w, http.StatusOK, campaign)
}

func (a *API) handleCampaignPause(w http.ResponseWriter, r *http.Request) {
	a.handleCampaignStatusAction(w, r, func(id string) (*models.AdCampaign, error) {
		return a.ads.Pause(r.Context(), id)
	})
}

func (a *API) handleCampaignResume(w http.ResponseWriter, r *http.Request) {
	a.handleCampaignStatusAction(w, r, func(id string) (*models.AdCampaign, error) {
		return a.ads.Resume(r.Context(), id, time.Now())
	})
}

func (a *API) handleCampaignApprove(w http.ResponseWriter, r *http.Request) {
	a.handleCampaignStatusAction(w, r, func(id string) (*models.AdCampaign, error) {
		return a.ads.Approve(r.Context(), id, time.Now())
	})
}

func (a *API) handleCampaignReject(w http.ResponseWriter, r *http.Request) {
	a.handleCampaignStatusAction(w, r, func(id string) (*models.AdCampaign, error) {
		return a.ads.Reject(r.Context(), id)
	})
}

type campaignMediaRequest struct {
	Title     string `json:"title"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	Duration  int    `json:"duration"`
	SortOrder int    `json:"sortOrder"`
}

// handleCampaignMediaAdd attaches a creative to a campaign. A multipart
// request uploads the file; a JSON request references an existing URL.
func (a *API) handleCampaignMediaAdd(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		a.handleCampaignMediaUpload(w, r, campaignID)
		return
	}

	var req campaignMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !validMediaType(req.Type) || req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid_media")
		return
	}

	creative := models.NewAdMedia(campaignID, req.Title, req.Type, req.URL, req.Duration)
	creative.SortOrder = req.SortOrder
	a.saveCampaignMedia(w, r, creative)
}

func (a *API) handleCampaignMediaUpload(w http.ResponseWriter, r *http.Request, campaignID string) {
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
	path, err := a.media.Store(r.Context(), "campaigns/"+campaignID, id, header.Filename, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error")
		return
	}

	creative := models.NewAdMedia(campaignID, r.FormValue("title"), mediaType, a.media.URL(path), 0)
	creative.ID = id
	a.saveCampaignMedia(w, r, creative)
}

func (a *API) saveCampaignMedia(w http.ResponseWriter, r *http.Request, creative *models.AdMedia) {
	if err := a.ads.AddCampaignMedia(r.Context(), creative); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign_not_found")
			return
		}
		a.logger.Error().Err(err).Msg("campaign media add failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	a.campaignChanged(r, creative.CampaignID)
	writeJSON(w, http.StatusCreated, creative)
}

func (a *API) handleCampaignMediaDelete(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	mediaID := chi.URLParam(r, "campaignMediaID")
	if err := a.ads.DeleteCampaignMedia(r.Context(), campaignID, mediaID); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	a.campaignChanged(r, campaignID)
	w.WriteHeader(http.StatusNoContent)
}

type campaignScheduleRequest struct {
	DayOfWeek    *int `json:"dayOfWeek"`
	StartMinutes *int `json:"startMinutes"`
	EndMinutes   *int `json:"endMinutes"`
	Active       *bool `json:"active"`
}

func (req *campaignScheduleRequest) validate() string {
	if req.DayOfWeek != nil && (*req.DayOfWeek < 0 || *req.DayOfWeek > 6) {
		return "invalid_day_of_week"
	}
	if (req.StartMinutes == nil) != (req.EndMinutes == nil) {
		return "incomplete_time_window"
	}
	if req.StartMinutes != nil {
		if *req.StartMinutes < 0 || *req.EndMinutes > 24*60 || *req.StartMinutes > *req.EndMinutes {
			return "invalid_time_window"
		}
	}
	return ""
}

func (a *API) handleCampaignScheduleAdd(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")

	var req campaignScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	row := models.NewAdSchedule(campaignID)
	row.DayOfWeek = req.DayOfWeek
	row.StartMinutes = req.StartMinutes
	row.EndMinutes = req.EndMinutes
	if req.Active != nil {
		row.Active = *req.Active
	}

	if err := a.ads.AddCampaignSchedule(r.Context(), row); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.campaignChanged(r, campaignID)
	writeJSON(w, http.StatusCreated, row)
}

func (a *API) handleCampaignScheduleUpdate(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")

	var req campaignScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	row := &models.AdSchedule{
		ID:           chi.URLParam(r, "campaignScheduleID"),
		CampaignID:   campaignID,
		DayOfWeek:    req.DayOfWeek,
		StartMinutes: req.StartMinutes,
		EndMinutes:   req.EndMinutes,
		Active:       req.Active == nil || *req.Active,
	}
	if err := a.ads.UpdateCampaignSchedule(r.Context(), row); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.campaignChanged(r, campaignID)
	writeJSON(w, http.StatusOK, row)
}

func (a *API) handleCampaignScheduleDelete(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	scheduleID := chi.URLParam(r, "campaignScheduleID")
	if err := a.ads.DeleteCampaignSchedule(r.Context(), campaignID, scheduleID); err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	a.campaignChanged(r, campaignID)
	w.WriteHeader(http.StatusNoContent)
}
