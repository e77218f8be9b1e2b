// Package app wires configuration, storage, the monitoring backend, and the
// HTTP server into one runnable unit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shubhamdasnadas/assetwatch/internal/config"
	"github.com/shubhamdasnadas/assetwatch/internal/core"
	"github.com/shubhamdasnadas/assetwatch/internal/history"
	"github.com/shubhamdasnadas/assetwatch/internal/server"
	"github.com/shubhamdasnadas/assetwatch/internal/sqlite"
	"github.com/shubhamdasnadas/assetwatch/internal/zabbix"
	"github.com/shubhamdasnadas/assetwatch/pkg/logger"
	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

// App holds the application's dependencies and configuration.
type App struct {
	Config  *config.Config
	SQLite  *sqlite.DB
	Logger  *slog.Logger
	Version string

	server *server.Server
}

// Options contains configuration needed when creating a new App instance.
type Options struct {
	ConfigPath string
	Version    string
}

// New loads configuration and constructs an App. Components are connected in
// Initialize so a config error surfaces before anything touches disk.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &App{
		Config:  cfg,
		Logger:  logger.New(cfg.Logging.Debug),
		Version: opts.Version,
	}, nil
}

// Initialize sets up the database, the history source, and the HTTP server.
func (a *App) Initialize(ctx context.Context) error {
	var err error

	a.SQLite, err = sqlite.New(sqlite.Options{
		Path:   a.Config.SQLite.Path,
		Logger: a.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sqlite: %w", err)
	}

	var source history.Source
	if a.Config.Zabbix.URL != "" {
		client, err := zabbix.NewClient(zabbix.ClientOptions{
			URL:      a.Config.Zabbix.URL,
			Username: a.Config.Zabbix.Username,
			Password: a.Config.Zabbix.Password,
			Timeout:  a.Config.Zabbix.Timeout,
		}, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize zabbix client: %w", err)
		}
		source = client
	} else {
		a.Logger.Warn("zabbix backend not configured, chart sessions will fail")
		source = unconfiguredSource{}
	}

	sessions := server.NewSessionManager(source, a.Logger, history.Options{
		InitialWindow: a.Config.History.InitialWindow,
		ChunkWindow:   a.Config.History.ChunkWindow,
		MaxLookback:   a.Config.History.MaxLookback,
		InitialDelay:  a.Config.History.InitialDelay,
		ChunkDelay:    a.Config.History.ChunkDelay,
		MaxPoints:     a.Config.History.MaxPoints,
	})

	dashboard := core.NewDashboard(a.SQLite, a.Logger, a.Config.Dashboard.CacheTTL)

	a.server = server.New(server.ServerOptions{
		Config:    a.Config,
		SQLite:    a.SQLite,
		Dashboard: dashboard,
		Sessions:  sessions,
		Logger:    a.Logger,
		Version:   a.Version,
	})

	return nil
}

// Start begins serving HTTP requests. Blocks until shutdown.
func (a *App) Start() error {
	if a.server == nil {
		return fmt.Errorf("server not initialized")
	}
	return a.server.Start()
}

// Shutdown gracefully stops the server and closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}

	if a.server != nil {
		serverCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(serverCtx); err != nil {
			a.Logger.Error("error shutting down server", "error", err)
		}
	}

	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			a.Logger.Error("error closing sqlite", "error", err)
		}
	}

	a.Logger.Info("application shutdown complete")
	return nil
}

// unconfiguredSource stands in when no monitoring backend is configured.
// Sessions opened against it move straight to the failed state.
type unconfiguredSource struct{}

func (unconfiguredSource) FetchRange(context.Context, string, int64, int64) ([]models.HistoryPoint, error) {
	return nil, errors.New("no monitoring backend configured")
}
