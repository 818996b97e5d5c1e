/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborlight/portkiosk/internal/ads"
)

func parseTimeParam(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func (a *API) handleAnalyticsAds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, ok := parseTimeParam(q.Get("startDate"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_start_date")
		return
	}
	end, ok := parseTimeParam(q.Get("endDate"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_end_date")
		return
	}

	report, err := a.ads.Impressions(r.Context(), ads.ImpressionFilter{
		CampaignID: q.Get("campaignId"),
		KioskID:    q.Get("kioskId"),
		Start:      start,
		End:        end,
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("ad analytics failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleAnalyticsRevenue(w http.ResponseWriter, r *http.Request) {
	report, err := a.ads.RevenueByCampaign(r.Context(), r.URL.Query().Get("advertiserId"))
	if err != nil {
		a.logger.Error().Err(err).Msg("revenue report failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleAnalyticsPerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := a.ads.Performance(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign_not_found")
			return
		}
		a.logger.Error().Err(err).Msg("campaign performance failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, perf)
}
