/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires every dependency together and runs the HTTP stack.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/ads"
	"github.com/harborlight/portkiosk/internal/api"
	"github.com/harborlight/portkiosk/internal/audit"
	"github.com/harborlight/portkiosk/internal/cache"
	"github.com/harborlight/portkiosk/internal/config"
	"github.com/harborlight/portkiosk/internal/db"
	"github.com/harborlight/portkiosk/internal/eventbus"
	"github.com/harborlight/portkiosk/internal/events"
	"github.com/harborlight/portkiosk/internal/kiosk"
	"github.com/harborlight/portkiosk/internal/leadership"
	"github.com/harborlight/portkiosk/internal/logbuffer"
	"github.com/harborlight/portkiosk/internal/media"
	"github.com/harborlight/portkiosk/internal/models"
	"github.com/harborlight/portkiosk/internal/playlist"
	"github.com/harborlight/portkiosk/internal/schedule"
	"github.com/harborlight/portkiosk/internal/settings"
	"github.com/harborlight/portkiosk/internal/telemetry"
	"github.com/harborlight/portkiosk/internal/version"
	"github.com/harborlight/portkiosk/internal/webhooks"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db          *gorm.DB
	cache       *cache.Cache
	bus         *events.Bus
	bridge      eventbus.Bridge
	adsSvc      *ads.Service
	scheduleSvc *schedule.Service
	settingsSvc *settings.Service
	kioskSvc    *kiosk.Service
	mediaSvc    *media.Service
	auditSvc    *audit.Service
	webhookSvc  *webhooks.Service
	election    *leadership.Election
	checker     *version.Checker
	logBuffer   *logbuffer.Buffer
	api         *api.API

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies. logBuf may be nil when
// log capture is not wanted.
func New(cfg *config.Config, logBuf *logbuffer.Buffer, logger zerolog.Logger) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		router:    chi.NewRouter(),
		logBuffer: logBuf,
	}

	if err := s.initDependencies(); err != nil {
		return nil, err
	}
	s.configureRoutes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	return s, nil
}

func (s *Server) initDependencies() error {
	gdb, err := db.Connect(s.cfg, s.logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	s.db = gdb

	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err := s.ensureAdminUser(); err != nil {
		return err
	}

	s.bus = events.NewBus()

	var redisClient *redis.Client
	if s.cfg.CacheEnabled || s.cfg.BusBackend == config.BusRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPassword,
			DB:       s.cfg.RedisDB,
		})
		s.DeferClose(redisClient.Close)
	}
	s.cache = cache.New(redisClient, s.cfg.CacheEnabled, s.logger)

	instance := s.cfg.InstanceID
	if instance == "" {
		instance, _ = os.Hostname()
	}
	if redisClient != nil {
		s.election = leadership.NewElection(redisClient, instance, s.logger)
	}
	switch s.cfg.BusBackend {
	case config.BusRedis:
		bridge, err := eventbus.NewRedisBridge(context.Background(), s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, instance, s.bus, s.logger)
		if err != nil {
			return fmt.Errorf("redis event bridge: %w", err)
		}
		s.bridge = bridge
		s.DeferClose(bridge.Close)
	case config.BusNATS:
		bridge, err := eventbus.NewNATSBridge(s.cfg.NATSURL, instance, s.bus, s.logger)
		if err != nil {
			return fmt.Errorf("nats event bridge: %w", err)
		}
		s.bridge = bridge
		s.DeferClose(bridge.Close)
	}

	s.scheduleSvc = schedule.NewService(gdb, s.logger)
	s.settingsSvc = settings.NewService(gdb, s.logger)
	s.adsSvc = ads.NewService(gdb, s.logger)

	mediaSvc, err := media.NewService(s.cfg, s.logger)
	if err != nil {
		return fmt.Errorf("media service: %w", err)
	}
	s.mediaSvc = mediaSvc
	if err := mediaSvc.CheckStorageAccess(); err != nil {
		s.logger.Warn().Err(err).Msg("media storage not accessible, uploads will fail")
	}

	composer := playlist.NewComposer(s.adsSvc, s.cfg.InterstitialInterval, s.logger)
	s.kioskSvc = kiosk.NewService(gdb, s.scheduleSvc, s.settingsSvc, s.adsSvc, composer, s.cache, s.logger)

	s.auditSvc = audit.NewService(gdb, s.bus, s.logger)
	s.webhookSvc = webhooks.NewService(gdb, s.bus, s.logger)
	s.checker = version.NewChecker(s.logger)

	s.api = api.New(gdb, s.cfg, s.scheduleSvc, s.settingsSvc, s.adsSvc, s.kioskSvc, s.mediaSvc, s.auditSvc, s.webhookSvc, s.bus, s.bridge, s.logBuffer, s.checker, s.logger)
	return nil
}

// ensureAdminUser bootstraps the first dashboard account from the
// environment so a fresh install is reachable.
func (s *Server) ensureAdminUser() error {
	email := os.Getenv("PORTKIOSK_ADMIN_EMAIL")
	password := os.Getenv("PORTKIOSK_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user := models.NewUser(email, string(hash), "Administrator", "admin")
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	s.logger.Info().Str("email", email).Msg("bootstrap admin user created")
	return nil
}

func (s *Server) configureRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeadersMiddleware)
	s.router.Use(telemetry.Tracing)
	s.router.Use(telemetry.Metrics)
	// WebSocket connections outlive any sane request timeout.
	s.router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(60 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	s.api.Routes(s.router)
	s.router.Handle("/metrics", telemetry.Handler())

	// Locally stored uploads are served straight from the media root. S3
	// deployments serve creatives from the bucket URL instead.
	if s.cfg.S3Bucket == "" {
		fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(s.cfg.MediaRoot)))
		s.router.Get("/media/*", func(w http.ResponseWriter, r *http.Request) {
			fileServer.ServeHTTP(w, r)
		})
	}
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self' 'unsafe-inline' data: blob:; frame-ancestors 'none'; base-uri 'self'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server and background workers until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer(ctx, "portkiosk", s.cfg.OTLPEndpoint, s.cfg.TracingSampleRate)
		if err != nil {
			s.logger.Warn().Err(err).Msg("tracing init failed, continuing without traces")
		} else {
			s.DeferClose(func() error {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return shutdown(shutdownCtx)
			})
		}
	}

	s.startBackgroundWorkers()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// Shutdown stops the HTTP server and background workers gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopBackgroundWorkers()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return s.Close()
}

// Close runs deferred closers in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup function run on Close.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	if s.election != nil {
		s.election.Start(ctx)
	}
	s.checker.Start(ctx)

	s.bgWG.Add(3)
	go func() {
		defer s.bgWG.Done()
		s.auditSvc.Start(ctx)
	}()
	go func() {
		defer s.bgWG.Done()
		s.webhookSvc.Start(ctx)
	}()
	go s.runCampaignStatusRoller(ctx)
}

// runCampaignStatusRoller periodically re-derives campaign statuses so
// flights start and expire without an admin touching them. With several
// instances behind redis, only the elected leader sweeps.
func (s *Server) runCampaignStatusRoller(ctx context.Context) {
	defer s.bgWG.Done()

	ticker := time.NewTicker(s.cfg.CampaignSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.election != nil && !s.election.IsLeader() {
				continue
			}
			if err := s.adsSvc.SweepStatuses(ctx, now); err != nil {
				s.logger.Error().Err(err).Msg("campaign status sweep failed")
				continue
			}
			s.kioskSvc.InvalidateCampaigns(ctx)
		}
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel != nil {
		s.bgCancel()
	}
	s.bgWG.Wait()

	s.checker.Stop()
	if s.election != nil {
		s.election.Stop()
	}
}

// HTTPServer exposes the underlying http.Server for tests.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}
