// Package server exposes the HTTP API: asset and alert definition CRUD, the
// dashboard rollup, CSV import/export, and progressive chart history sessions.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/shubhamdasnadas/assetwatch/internal/config"
	"github.com/shubhamdasnadas/assetwatch/internal/core"
	"github.com/shubhamdasnadas/assetwatch/internal/metrics"
	"github.com/shubhamdasnadas/assetwatch/internal/sqlite"
)

// ServerOptions bundles the dependencies needed to build a Server.
type ServerOptions struct {
	Config    *config.Config
	SQLite    *sqlite.DB
	Dashboard *core.Dashboard
	Sessions  *SessionManager
	Logger    *slog.Logger
	Version   string
}

// Server is the HTTP API server.
type Server struct {
	app       *fiber.App
	config    *config.Config
	sqlite    *sqlite.DB
	dashboard *core.Dashboard
	sessions  *SessionManager
	log       *slog.Logger
	version   string
}

// New builds the fiber app and registers all routes.
func New(opts ServerOptions) *Server {
	s := &Server{
		config:    opts.Config,
		sqlite:    opts.SQLite,
		dashboard: opts.Dashboard,
		sessions:  opts.Sessions,
		log:       opts.Logger.With("component", "server"),
		version:   opts.Version,
	}

	s.app = fiber.New(fiber.Config{
		ReadTimeout:           opts.Config.Server.ReadTimeout,
		WriteTimeout:          opts.Config.Server.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", s.handleMetrics)

	api := s.app.Group("/api/v1")

	api.Get("/dashboard/alerts", s.handleDashboardAlerts)

	alerts := api.Group("/alerts")
	alerts.Get("/", s.handleListAlertDefinitions)
	alerts.Post("/", s.handleCreateAlertDefinition)
	alerts.Get("/:alertID", s.handleGetAlertDefinition)
	alerts.Put("/:alertID", s.handleUpdateAlertDefinition)
	alerts.Delete("/:alertID", s.handleDeleteAlertDefinition)

	assets := api.Group("/assets/:module")
	assets.Get("/export", s.handleExportAssets)
	assets.Post("/import", s.handleImportAssets)
	assets.Get("/", s.handleListAssets)
	assets.Post("/", s.handleCreateAsset)
	assets.Get("/:assetID", s.handleGetAsset)
	assets.Put("/:assetID", s.handleUpdateAsset)
	assets.Delete("/:assetID", s.handleDeleteAsset)

	sessions := api.Group("/history/sessions")
	sessions.Post("/", s.handleOpenHistorySession)
	sessions.Get("/:sessionID", s.handleHistorySnapshot)
	sessions.Post("/:sessionID/refresh", s.handleRefreshHistorySession)
	sessions.Delete("/:sessionID", s.handleCloseHistorySession)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return SendSuccess(c, fiber.StatusOK, fiber.Map{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	metrics.WritePrometheus(c.Response().BodyWriter())
	return nil
}

// errorHandler catches errors that escape handlers and wraps them in the
// standard envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	s.log.Error("unhandled request error", "path", c.Path(), "error", err)
	return SendError(c, code, err.Error())
}

// Start begins listening for requests. Blocks until shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.log.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully and cancels live chart sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessions.CloseAll()
	return s.app.ShutdownWithContext(ctx)
}
