package cmd

import (
	"os"

	"github.com/hance08/paycore/internal/app"
	"github.com/hance08/paycore/internal/config"
	"github.com/hance08/paycore/internal/ui/views"
	"github.com/spf13/cobra"
)

type infoRunner struct {
	app *app.App
}

func NewInfoCmd(provide app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display application information",
		Long:  `Display current configuration, database location, sweep schedule and notification settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &infoRunner{
				app: provide(),
			}

			return runner.Run()
		},
	}
}

func (r *infoRunner) Run() error {
	cfg := r.app.Config

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = "(None, using defaults)"
	}

	item := views.SystemInfoItem{
		ConfigPath:     configPath,
		DBDriver:       cfg.Database.Driver,
		AppDataDir:     appDataDirOrUnknown(),
		ScheduleCron:   cfg.Scheduler.Cron,
		WebhookEnabled: cfg.Notify.WebhookURL != "",
	}

	if cfg.Database.Driver == config.DriverMemory {
		item.DBPath = "(in memory)"
		item.DBExists = true
	} else {
		dbPath, err := app.DatabasePath(cfg)
		if err != nil {
			return err
		}
		item.DBPath = dbPath
		if _, err := os.Stat(dbPath); err == nil {
			item.DBExists = true
		}
	}

	return views.RenderSystemInfo(item)
}

func appDataDirOrUnknown() string {
	dir, err := app.AppDataDir()
	if err != nil {
		return "Unknown"
	}
	return dir
}
