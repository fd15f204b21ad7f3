// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/cache"
	"github.com/byiringiroaimefils/estg-tss/internal/config"
	"github.com/byiringiroaimefils/estg-tss/internal/geoip"
	"github.com/byiringiroaimefils/estg-tss/internal/handler"
	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/imaging"
	"github.com/byiringiroaimefils/estg-tss/internal/logging"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/render"
	"github.com/byiringiroaimefils/estg-tss/internal/scheduler"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
	"github.com/byiringiroaimefils/estg-tss/internal/session"
	"github.com/byiringiroaimefils/estg-tss/internal/store"
	"github.com/byiringiroaimefils/estg-tss/internal/version"
	"github.com/byiringiroaimefils/estg-tss/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// contentRoutes are the handlers of an admin content tab.
type contentRoutes struct {
	List   http.HandlerFunc
	New    http.HandlerFunc
	Create http.HandlerFunc
	Edit   http.HandlerFunc // optional
	Update http.HandlerFunc // optional
	Delete http.HandlerFunc
}

// registerContent registers the list, create and delete routes of a tab,
// plus the edit routes when the tab supports editing.
// Routes: GET /, GET /new, POST /, [GET /{id}/edit, POST /{id}], POST /{id}/delete
func registerContent(r chi.Router, base string, h contentRoutes) {
	baseID := base + handler.RouteParamID
	r.Get(base, h.List)
	r.Get(base+handler.RouteSuffixNew, h.New)
	r.Post(base, h.Create)
	if h.Edit != nil {
		r.Get(baseID+handler.RouteSuffixEdit, h.Edit)
	}
	if h.Update != nil {
		r.Post(baseID, h.Update)
	}
	r.Post(baseID+handler.RouteSuffixDelete, h.Delete)
}

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "estg - ESTG-TSS school website and admin panel\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ESTG_API_URL           School API base URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ESTG_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ESTG_DB_PATH           SQLite database path (default: ./data/estg.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ESTG_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ESTG_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ESTG_REDIS_URL         Redis URL for the public content cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ESTG_GEOIP_DB_PATH     GeoLite2-Country.mmdb for the activity log (optional)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}.WithBuildInfo()

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}
	slog.Info("i18n system initialized", "languages", i18n.SupportedLanguages)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(context.Background(), db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the activity log
	logger = slog.New(logging.NewActivityLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("activity log integration enabled", "min_level", "warn")

	sessionManager := session.New(db, cfg.IsDevelopment())

	geo, err := geoip.New(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database unavailable, countries will not be recorded", "path", cfg.GeoIPDBPath, "error", err)
	}
	defer func() { _ = geo.Close() }()

	contentCache := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, logger)
	defer func() { _ = contentCache.Close() }()

	api := apiclient.New(cfg.APIURL, cfg.APITimeout, logger)
	content := service.NewPublicContent(api, contentCache, time.Duration(cfg.CacheTTL)*time.Second, logger)
	activity := service.NewActivityService(db, geo, logger)
	images := imaging.NewProcessor(cfg.ImageMaxWidth)

	renderer, err := render.New(render.Config{
		TemplatesFS:    web.TemplatesFS(),
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	// 10 requests per second with burst of 20 per IP on the auth routes
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)

	sched := scheduler.New(logger)
	maintenance := scheduler.Maintenance{
		Content:           content,
		Activity:          activity,
		ActivityRetention: time.Duration(cfg.ActivityRetentionDays) * 24 * time.Hour,
		LoginProtection:   loginProtection,
		RateLimiter:       publicRateLimiter,
		Logger:            logger,
	}
	if cfg.GeoIPEnabled() && geo.Enabled() {
		maintenance.GeoIP = geo
	}
	if err := sched.AddMaintenance(maintenance); err != nil {
		return fmt.Errorf("registering scheduled jobs: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(api, renderer, sessionManager, activity, loginProtection)
	adminHandler := handler.NewAdminHandler()
	eventsHandler := handler.NewEventsHandler(api, renderer, sessionManager, content, activity, images, cfg.MaxUploadBytes())
	updatesHandler := handler.NewUpdatesHandler(api, renderer, sessionManager, content, activity, cfg.MaxUploadBytes())
	creatorsHandler := handler.NewCreatorsHandler(api, renderer, sessionManager, activity)
	profileHandler := handler.NewProfileHandler(api, renderer, sessionManager, activity)
	activityHandler := handler.NewActivityHandler(activity, sched.Registry(), renderer)
	frontendHandler := handler.NewFrontendHandler(content, renderer)
	healthHandler := handler.NewHealthHandler(db, api, sessionManager, content, versionInfo)

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment(), cfg.APIURL)))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.Language(sessionManager))

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerPort)
	csrfConfig.ErrorHandler = handler.Forbidden(renderer)
	csrfMiddleware := middleware.CSRF(csrfConfig)

	// Health check routes (details for Admin sessions only)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Public pages: each costs an API call, so they share the per-IP limiter
	r.Group(func(r chi.Router) {
		r.Use(publicRateLimiter.Middleware())
		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteEvents, frontendHandler.Events)
		r.Get(handler.RouteEventsID, frontendHandler.EventDetail)
		r.Get(handler.RouteUpdates, frontendHandler.Updates)
	})

	// Static assets: cache for 1 day
	r.Handle("/static/*", middleware.Static(web.StaticFS(), "/static/", 24*time.Hour))

	// Auth routes: publicRateLimiter (10 req/s) + loginProtection (0.5 req/s on POST + account lockout)
	r.Group(func(r chi.Router) {
		r.Use(publicRateLimiter.Middleware())
		r.Use(csrfMiddleware)
		r.Get(handler.RouteAdminLogin, authHandler.AdminLoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteAdminLogin, authHandler.AdminLogin)
		r.Get(handler.RouteLogin, authHandler.CreatorLoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.CreatorLogin)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLanguage, authHandler.SetLanguage)
	})

	// Admin panel: every request is checked against the API session
	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Gate(middleware.GateConfig{
			Sessions:    sessionManager,
			API:         api,
			Unavailable: handler.Unavailable(renderer),
			Logger:      logger,
		}))

		r.Get(handler.RouteRoot, adminHandler.Dashboard)

		registerContent(r, handler.RouteUpdates, contentRoutes{
			List: updatesHandler.List, New: updatesHandler.New, Create: updatesHandler.Create,
			Edit: updatesHandler.Edit, Update: updatesHandler.Update, Delete: updatesHandler.Delete,
		})
		registerContent(r, handler.RouteEvents, contentRoutes{
			List: eventsHandler.List, New: eventsHandler.New, Create: eventsHandler.Create,
			Delete: eventsHandler.Delete,
		})

		r.Get(handler.RouteProfile, profileHandler.Show)
		r.Post(handler.RouteProfile+handler.RouteParamField, profileHandler.Update)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(sessionManager))

			registerContent(r, handler.RouteCreators, contentRoutes{
				List: creatorsHandler.List, New: creatorsHandler.New, Create: creatorsHandler.Create,
				Delete: creatorsHandler.Delete,
			})
			r.Get(handler.RouteCreatorsID+handler.RouteSuffixDelete, creatorsHandler.ConfirmDelete)

			r.Get(handler.RouteActivity, activityHandler.List)
			r.Post(handler.RouteActivity+handler.RouteJobs+handler.RouteParamName, activityHandler.RunJob)
		})
	})

	r.NotFound(handler.NotFound(renderer))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for poster uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "api", cfg.APIURL, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
