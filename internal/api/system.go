/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/harborlight/portkiosk/internal/audit"
	"github.com/harborlight/portkiosk/internal/logbuffer"
	"github.com/harborlight/portkiosk/internal/version"
)

func (a *API) handleAuditList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	since, ok := parseTimeParam(q.Get("since"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_since")
		return
	}
	until, ok := parseTimeParam(q.Get("until"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_until")
		return
	}

	filters := audit.QueryFilters{
		Action:     q.Get("action"),
		ActorID:    q.Get("actorId"),
		ResourceID: q.Get("resourceId"),
		Since:      since,
		Until:      until,
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filters.Offset = offset
	}

	logs, total, err := a.audit.Query(r.Context(), filters)
	if err != nil {
		a.logger.Error().Err(err).Msg("audit query failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": logs,
		"total":   total,
	})
}

func (a *API) handleLogsQuery(w http.ResponseWriter, r *http.Request) {
	if a.logBuffer == nil {
		writeError(w, http.StatusNotFound, "logs_unavailable")
		return
	}

	q := r.URL.Query()
	params := logbuffer.QueryParams{
		Level:     q.Get("level"),
		Component: q.Get("component"),
		Search:    q.Get("search"),
		Limit:     200,
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		params.Limit = limit
	}
	if since, ok := parseTimeParam(q.Get("since")); ok && since != nil {
		params.Since = *since
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries":    a.logBuffer.Query(params),
		"components": a.logBuffer.Components(),
	})
}

func (a *API) handleLogsStats(w http.ResponseWriter, r *http.Request) {
	if a.logBuffer == nil {
		writeError(w, http.StatusNotFound, "logs_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, a.logBuffer.Stats())
}

func (a *API) handleVersion(w http.ResponseWriter, r *http.Request) {
	if a.version == nil {
		writeJSON(w, http.StatusOK, version.UpdateInfo{
			CurrentVersion: version.Version,
			CheckedAt:      time.Now(),
		})
		return
	}
	writeJSON(w, http.StatusOK, a.version.Info())
}
