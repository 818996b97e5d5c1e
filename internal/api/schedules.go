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

	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/models"
	"github.com/harborlight/portkiosk/internal/schedule"
)

type scheduleRequest struct {
	Route         string   `json:"route"`
	Vessel        string   `json:"vessel"`
	DepartureTime string   `json:"departureTime"`
	ArrivalTime   string   `json:"arrivalTime"`
	TimeDisplay   string   `json:"timeDisplay"`
	Days          []string `json:"days"`
	Status        string   `json:"status"`
	SortOrder     int      `json:"sortOrder"`
}

// validate checks the 24-hour clock fields. A pre-rendered timeDisplay
// without clock fields is still accepted for older dashboard clients.
func (req *scheduleRequest) validate() string {
	if req.Route == "" {
		return "missing_route"
	}
	if req.DepartureTime == "" && req.TimeDisplay == "" {
		return "missing_departure_time"
	}
	if req.DepartureTime != "" && !schedule.ValidClock(req.DepartureTime) {
		return "invalid_departure_time"
	}
	if req.ArrivalTime != "" && !schedule.ValidClock(req.ArrivalTime) {
		return "invalid_arrival_time"
	}
	return ""
}

func (a *API) handleSchedulesList(w http.ResponseWriter, r *http.Request) {
	schedules, err := a.schedules.List(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("schedules list failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (a *API) handleSchedulesGet(w http.ResponseWriter, r *http.Request) {
	row, err := a.schedules.Get(r.Context(), chi.URLParam(r, "scheduleID"))
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (a *API) handleSchedulesCreate(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	row := models.NewSchedule(req.Route, req.Vessel, req.DepartureTime, req.ArrivalTime, req.Days)
	row.TimeDisplay = req.TimeDisplay
	if req.Status != "" {
		row.Status = req.Status
	}
	row.SortOrder = req.SortOrder

	if err := a.schedules.Create(r.Context(), row); err != nil {
		a.logger.Error().Err(err).Msg("schedule create failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.publish(r.Context(), events.TypeScheduleUpdated, map[string]any{"scheduleId": row.ID})
	writeJSON(w, http.StatusCreated, row)
}

func (a *API) handleSchedulesUpdate(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	row := &models.Schedule{
		ID:            chi.URLParam(r, "scheduleID"),
		Route:         req.Route,
		Vessel:        req.Vessel,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		TimeDisplay:   req.TimeDisplay,
		Days:          req.Days,
		Status:        req.Status,
		SortOrder:     req.SortOrder,
	}
	if err := a.schedules.Update(r.Context(), row); err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.publish(r.Context(), events.TypeScheduleUpdated, map[string]any{"scheduleId": row.ID})
	writeJSON(w, http.StatusOK, row)
}

type scheduleStatusRequest struct {
	Status string `json:"status"`
}

func (a *API) handleSchedulesSetStatus(w http.ResponseWriter, r *http.Request) {
	var req scheduleStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	switch req.Status {
	case schedule.StatusOntime, schedule.StatusCancelled, schedule.StatusDelayed:
	default:
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	id := chi.URLParam(r, "scheduleID")
	if err := a.schedules.SetStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.publish(r.Context(), events.TypeScheduleUpdated, map[string]any{"scheduleId": id})
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

func (a *API) handleSchedulesDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scheduleID")
	if err := a.schedules.Delete(r.Context(), id); err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	a.publish(r.Context(), events.TypeScheduleUpdated, map[string]any{"scheduleId": id})
	w.WriteHeader(http.StatusNoContent)
}
