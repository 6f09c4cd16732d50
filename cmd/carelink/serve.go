package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carelink/carelink/internal/chatbot"
	"github.com/carelink/carelink/internal/config"
	"github.com/carelink/carelink/internal/dashboard"
	"github.com/carelink/carelink/internal/domain/care"
	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/domain/notification"
	"github.com/carelink/carelink/internal/domain/pharmacy"
	"github.com/carelink/carelink/internal/mockstore"
	"github.com/carelink/carelink/internal/platform/authstore"
	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/blobstore"
	"github.com/carelink/carelink/internal/platform/db"
	"github.com/carelink/carelink/internal/platform/localstore"
	"github.com/carelink/carelink/internal/platform/middleware"
	"github.com/carelink/carelink/internal/platform/push"
	"github.com/carelink/carelink/internal/reminder"
)

const version = "0.1.0"

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API and dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// deps are the collaborators the HTTP server is built from.
type deps struct {
	remote      backend.Store
	relational  *db.Relational
	local       *mockstore.Store
	blobs       blobstore.BlobStore
	notifier    push.Notifier
	corsOrigins []string
}

// app is the wired server plus the services background jobs need.
type app struct {
	echo     *echo.Echo
	services dashboard.Services
}

func newApp(d deps, logger zerolog.Logger) *app {
	svc := dashboard.NewServices(d.remote, d.local, d.notifier, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.corsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":       "ok",
			"version":      version,
			"data_backend": d.remote.Name(),
			"local_seeded": d.local.Stored(backend.Users),
		})
	})
	e.GET("/health/db", db.HealthHandler(d.relational))

	api := e.Group("/api/v1")
	identity.NewHandler(svc.Identity).RegisterRoutes(api)
	care.NewHandler(svc.Care).RegisterRoutes(api)
	pharmacy.NewHandler(svc.Pharmacy).RegisterRoutes(api)
	notification.NewHandler(svc.Notifications).RegisterRoutes(api)
	blobstore.NewBlobHandler(d.blobs, svc.Care).RegisterRoutes(api)

	bot := chatbot.New(svc.Identity, svc.Care, svc.Pharmacy, d.local, d.remote, logger)
	chatbot.NewHandler(bot).RegisterRoutes(api)

	dashboard.NewHandler(dashboard.NewBuilder(svc)).RegisterRoutes(e)

	return &app{echo: e, services: svc}
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		logger := newLogger(nil)
		logger.Error().Err(err).Msg("failed to load config")
		return err
	}
	logger := newLogger(cfg)
	ctx := context.Background()

	// Local store
	kv, err := localstore.OpenLevelDB(cfg.LocalStorePath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open local store")
		return err
	}
	defer kv.Close()
	local := mockstore.New(kv)

	// Remote record store
	remote, closeRemote, err := openRemote(ctx, cfg, cfg.DataBackend)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open remote store")
		return err
	}
	defer closeRemote()
	relational, _ := remote.(*db.Relational)
	logger.Info().Str("data_backend", remote.Name()).Bool("configured", isConfigured(cfg, cfg.DataBackend)).
		Msg("remote store ready")

	// Auth, storage and push
	ac, err := authstore.Open(ctx, authSettings(cfg))
	if err != nil {
		logger.Error().Err(err).Msg("failed to open auth provider")
		return err
	}
	sender, err := push.Open(ctx, authSettings(cfg))
	if err != nil {
		logger.Error().Err(err).Msg("failed to open push sender")
		return err
	}
	logger.Info().Bool("configured", cfg.AuthConfigured()).Bool("auth", !ac.IsStub()).Bool("push", !sender.IsStub()).
		Msg("provider clients ready")

	a := newApp(deps{
		remote:      remote,
		relational:  relational,
		local:       local,
		blobs:       blobstore.NewFallback(ac, blobstore.NewInMemoryBlobStore(), logger),
		notifier:    sender,
		corsOrigins: cfg.CORSOrigins,
	}, logger)

	// Reminders
	reminderCtx, stopReminders := context.WithCancel(ctx)
	defer stopReminders()
	rem := reminder.New(a.services.Care, a.services.Identity, a.services.Notifications, cfg.ReminderLead, logger)
	scheduler, err := rem.Start(reminderCtx, cfg.ReminderInterval)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start reminders")
		return err
	}
	defer scheduler.Stop()

	// Graceful shutdown
	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("version", version).Msg("starting server")
		if err := a.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errc:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func isConfigured(cfg *config.Config, backendName string) bool {
	if backendName == config.BackendRelational {
		return cfg.RelationalConfigured()
	}
	return cfg.DocstoreConfigured()
}
