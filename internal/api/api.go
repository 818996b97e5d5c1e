/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the HTTP handlers: the public kiosk surface and the
// authenticated admin dashboard surface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/ads"
	"github.com/harborlight/portkiosk/internal/audit"
	"github.com/harborlight/portkiosk/internal/auth"
	"github.com/harborlight/portkiosk/internal/config"
	"github.com/harborlight/portkiosk/internal/eventbus"
	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/kiosk"
	"github.com/harborlight/portkiosk/internal/logbuffer"
	"github.com/harborlight/portkiosk/internal/media"
	"github.com/harborlight/portkiosk/internal/schedule"
	"github.com/harborlight/portkiosk/internal/settings"
	"github.com/harborlight/portkiosk/internal/version"
	"github.com/harborlight/portkiosk/internal/webhooks"
	ws "nhooyr.io/websocket"
)

// API exposes HTTP handlers.
type API struct {
	db        *gorm.DB
	cfg       *config.Config
	schedules *schedule.Service
	settings  *settings.Service
	ads       *ads.Service
	kiosk     *kiosk.Service
	media     *media.Service
	audit     *audit.Service
	webhooks  *webhooks.Service
	bus       *events.Bus
	bridge    eventbus.Bridge
	logBuffer *logbuffer.Buffer
	version   *version.Checker
	logger    zerolog.Logger
}

// New creates the API router wrapper. bridge may be nil when the process
// runs standalone; logBuf and checker may be nil in tests.
func New(db *gorm.DB, cfg *config.Config, schedules *schedule.Service, settingsSvc *settings.Service, adsSvc *ads.Service, kioskSvc *kiosk.Service, mediaSvc *media.Service, auditSvc *audit.Service, webhookSvc *webhooks.Service, bus *events.Bus, bridge eventbus.Bridge, logBuf *logbuffer.Buffer, checker *version.Checker, logger zerolog.Logger) *API {
	return &API{
		db:        db,
		cfg:       cfg,
		schedules: schedules,
		settings:  settingsSvc,
		ads:       adsSvc,
		kiosk:     kioskSvc,
		media:     mediaSvc,
		audit:     auditSvc,
		webhooks:  webhookSvc,
		bus:       bus,
		bridge:    bridge,
		logBuffer: logBuf,
		version:   checker,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts every endpoint on the router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		// Public kiosk endpoints (no auth required)
		r.Get("/kiosk", a.handleKioskGet)
		r.Put("/kiosk", a.handleKioskUpdateControl)
		r.Post("/kiosk/impression", a.handleKioskImpression)
		r.Get("/events", a.handleEvents)

		r.Post("/auth/login", a.handleLogin)

		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(a.cfg.JWTSigningKey))

			pr.Route("/schedules", func(r chi.Router) {
				r.Get("/", a.handleSchedulesList)
				r.Post("/", a.handleSchedulesCreate)
				r.Route("/{scheduleID}", func(r chi.Router) {
					r.Get("/", a.handleSchedulesGet)
					r.Put("/", a.handleSchedulesUpdate)
					r.Patch("/status", a.handleSchedulesSetStatus)
					r.Delete("/", a.handleSchedulesDelete)
				})
			})

			pr.Route("/media", func(r chi.Router) {
				r.Get("/", a.handleMediaList)
				r.Post("/", a.handleMediaCreate)
				r.Post("/upload", a.handleMediaUpload)
				r.Post("/reorder", a.handleMediaReorder)
				r.Route("/{mediaID}", func(r chi.Router) {
					r.Get("/", a.handleMediaGet)
					r.Put("/", a.handleMediaUpdate)
					r.Delete("/", a.handleMediaDelete)
				})
			})

			pr.Route("/settings", func(r chi.Router) {
				r.Get("/", a.handleSettingsGet)
				r.Put("/", a.handleSettingsUpdate)
			})

			pr.Route("/advertisers", func(r chi.Router) {
				r.Get("/", a.handleAdvertisersList)
				r.Post("/", a.handleAdvertisersCreate)
				r.Route("/{advertiserID}", func(r chi.Router) {
					r.Get("/", a.handleAdvertisersGet)
					r.Put("/", a.handleAdvertisersUpdate)
					r.Delete("/", a.handleAdvertisersDelete)
				})
			})

			pr.Route("/campaigns", func(r chi.Router) {
				r.Get("/", a.handleCampaignsList)
				r.Post("/", a.handleCampaignsCreate)
				r.Route("/{campaignID}", func(r chi.Router) {
					r.Get("/", a.handleCampaignsGet)
					r.Put("/", a.handleCampaignsUpdate)
					r.Delete("/", a.handleCampaignsDelete)
					r.Post("/pause", a.handleCampaignPause)
					r.Post("/resume", a.handleCampaignResume)
					r.Post("/approve", a.handleCampaignApprove)
					r.Post("/reject", a.handleCampaignReject)
					r.Route("/media", func(r chi.Router) {
						r.Post("/", a.handleCampaignMediaAdd)
						r.Delete("/{campaignMediaID}", a.handleCampaignMediaDelete)
					})
					r.Route("/schedules", func(r chi.Router) {
						r.Post("/", a.handleCampaignScheduleAdd)
						r.Put("/{campaignScheduleID}", a.handleCampaignScheduleUpdate)
						r.Delete("/{campaignScheduleID}", a.handleCampaignScheduleDelete)
					})
				})
			})

			pr.Route("/analytics", func(r chi.Router) {
				r.Get("/ads", a.handleAnalyticsAds)
				r.Get("/ads/revenue", a.handleAnalyticsRevenue)
				r.Get("/ads/campaigns/{campaignID}/performance", a.handleAnalyticsPerformance)
			})

			pr.Route("/webhooks", func(r chi.Router) {
				r.Get("/", a.handleWebhooksList)
				r.Post("/", a.handleWebhooksCreate)
				r.Route("/{webhookID}", func(r chi.Router) {
					r.Put("/", a.handleWebhooksUpdate)
					r.Delete("/", a.handleWebhooksDelete)
					r.Post("/test", a.handleWebhooksTest)
				})
			})

			pr.Get("/audit", a.handleAuditList)
			pr.Get("/logs", a.handleLogsQuery)
			pr.Get("/logs/stats", a.handleLogsStats)
			pr.Get("/version", a.handleVersion)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"db":     err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// publish fans an event out locally and, when bridged, to the other
// instances. The acting admin, when known, rides along for the audit trail.
func (a *API) publish(ctx context.Context, eventType string, payload map[string]any) {
	if claims, ok := auth.ClaimsFrom(ctx); ok {
		if payload == nil {
			payload = make(map[string]any)
		}
		payload["actorId"] = claims.UserID
		payload["actorEmail"] = claims.Email
	}
	evt := events.Event{Type: eventType, At: time.Now(), Payload: payload}
	a.bus.Publish(evt)
	if a.bridge != nil {
		if err := a.bridge.Publish(ctx, evt); err != nil {
			a.logger.Warn().Err(err).Str("type", eventType).Msg("bridge publish failed")
		}
	}
}

func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		a.logger.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(ws.StatusInternalError, "server error")

	id, sub := a.bus.Subscribe()
	defer a.bus.Unsubscribe(id)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(ws.StatusNormalClosure, "context cancelled")
			return
		case <-ticker.C:
			if err := conn.Write(ctx, ws.MessageText, []byte(`{"type":"ping"}`)); err != nil {
				a.logger.Debug().Err(err).Msg("websocket ping failed")
				conn.Close(ws.StatusInternalError, "write failed")
				return
			}
		case evt, ok := <-sub:
			if !ok {
				conn.Close(ws.StatusNormalClosure, "bus closed")
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, ws.MessageText, data); err != nil {
				a.logger.Debug().Err(err).Msg("websocket write failed")
				conn.Close(ws.StatusInternalError, "write failed")
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
