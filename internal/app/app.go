package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hance08/paycore/internal/config"
	"github.com/hance08/paycore/internal/logging"
	"github.com/hance08/paycore/internal/notify"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/store"
	"go.uber.org/zap"
)

type App struct {
	Service  *service.Service
	Store    store.Repository
	Logger   *zap.Logger
	Config   *config.Config
	Notifier *notify.Dispatcher
}

// NewApp initialize logging, database, notifications and services, then
// return App entity. The cleanup func drains pending notifications before
// closing the store.
func NewApp(cfg *config.Config, migrationFS fs.FS) (*App, func(), error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	repo, err := openStore(cfg, migrationFS)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sinks := []notify.Sink{notify.NewLogSink(logger)}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Notify.Webhook(), logger))
	}
	dispatcher := notify.NewDispatcher(logger, cfg.Notify.Buffer, sinks...)
	dispatcher.Start(context.Background())

	svcCfg, err := cfg.ServiceConfig()
	if err != nil {
		dispatcher.Close()
		_ = repo.Close()
		return nil, nil, fmt.Errorf("invalid transfer configuration: %w", err)
	}

	svc := service.NewService(service.Deps{
		Repo:     repo,
		Notifier: dispatcher,
		Logger:   logger,
	}, svcCfg)

	cleanup := func() {
		dispatcher.Close()
		if err := repo.Close(); err != nil {
			logger.Error("error closing database", zap.Error(err))
		}
		_ = logger.Sync()
	}

	return &App{
		Service:  svc,
		Store:    repo,
		Logger:   logger,
		Config:   cfg,
		Notifier: dispatcher,
	}, cleanup, nil
}

func openStore(cfg *config.Config, migrationFS fs.FS) (store.Repository, error) {
	switch strings.ToLower(cfg.Database.Driver) {
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	case "", config.DriverSQLite:
		dbPath, err := DatabasePath(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewStore(dbPath, migrationFS, cfg.Database.BusyTimeout())
	default:
		return nil, fmt.Errorf("unknown database driver '%s'", cfg.Database.Driver)
	}
}

// DatabasePath resolves the configured path, defaulting to the app data dir.
func DatabasePath(cfg *config.Config) (string, error) {
	if cfg.Database.Path != "" {
		return ExpandPath(cfg.Database.Path)
	}
	appDir, err := AppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "paycore.db"), nil
}

func AppDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to determine user home directory: %w", err)
		}
		return filepath.Join(home, ".paycore"), nil
	}

	return filepath.Join(configDir, "paycore"), nil
}

func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~\\") {
			return filepath.Join(home, path[2:]), nil
		}
	}
	return path, nil
}

// Provider hands the App to commands once the root command has built it.
type Provider func() *App
