package config

import (
	"time"

	"github.com/hance08/paycore/internal/logging"
	"github.com/hance08/paycore/internal/notify"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/utils"
	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	Database   DatabaseConfig  `mapstructure:"database"`
	Log        logging.Config  `mapstructure:"log"`
	Transfer   TransferConfig  `mapstructure:"transfer"`
	Scheduler  SchedulerConfig `mapstructure:"scheduler"`
	Notify     NotifyConfig    `mapstructure:"notify"`
	Server     ServerConfig    `mapstructure:"server"`
	ConfigPath string          `mapstructure:"-"`
}

type DatabaseConfig struct {
	Driver        string `mapstructure:"driver"`
	Path          string `mapstructure:"path"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms"`
}

type TransferConfig struct {
	MaxRetries  int    `mapstructure:"max_retries"`
	RetryBaseMS int    `mapstructure:"retry_base_ms"`
	MaxAmount   string `mapstructure:"max_amount"`
	RTGSMax     string `mapstructure:"rtgs_max"`
}

type SchedulerConfig struct {
	Cron        string `mapstructure:"cron"`
	BatchSize   int    `mapstructure:"batch_size"`
	Concurrency int    `mapstructure:"concurrency"`
}

type NotifyConfig struct {
	Buffer           int    `mapstructure:"buffer"`
	WebhookURL       string `mapstructure:"webhook_url"`
	WebhookTimeoutMS int    `mapstructure:"webhook_timeout_ms"`
	MaxFailures      uint32 `mapstructure:"max_failures"`
	OpenSeconds      int    `mapstructure:"open_seconds"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func NewDefault() *Config {
	return &Config{
		Database:  DatabaseConfig{Driver: DriverSQLite, Path: "", BusyTimeoutMS: 5000},
		Log:       logging.Config{Environment: "development", Level: "info"},
		Transfer:  TransferConfig{MaxRetries: 5, RetryBaseMS: 10, MaxAmount: "1000000", RTGSMax: ""},
		Scheduler: SchedulerConfig{Cron: "0 6 * * *", BatchSize: 500, Concurrency: 4},
		Notify:    NotifyConfig{Buffer: 256, WebhookTimeoutMS: 3000, MaxFailures: 5, OpenSeconds: 30},
		Server:    ServerConfig{Addr: ":8080"},
	}
}

// BindDefaults registers every key with viper. Keys viper does not know
// about are skipped by Unmarshal, environment overrides included.
func BindDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("database.driver", c.Database.Driver)
	v.SetDefault("database.path", c.Database.Path)
	v.SetDefault("database.busy_timeout_ms", c.Database.BusyTimeoutMS)

	v.SetDefault("log.environment", c.Log.Environment)
	v.SetDefault("log.level", c.Log.Level)

	v.SetDefault("transfer.max_retries", c.Transfer.MaxRetries)
	v.SetDefault("transfer.retry_base_ms", c.Transfer.RetryBaseMS)
	v.SetDefault("transfer.max_amount", c.Transfer.MaxAmount)
	v.SetDefault("transfer.rtgs_max", c.Transfer.RTGSMax)

	v.SetDefault("scheduler.cron", c.Scheduler.Cron)
	v.SetDefault("scheduler.batch_size", c.Scheduler.BatchSize)
	v.SetDefault("scheduler.concurrency", c.Scheduler.Concurrency)

	v.SetDefault("notify.buffer", c.Notify.Buffer)
	v.SetDefault("notify.webhook_url", c.Notify.WebhookURL)
	v.SetDefault("notify.webhook_timeout_ms", c.Notify.WebhookTimeoutMS)
	v.SetDefault("notify.max_failures", c.Notify.MaxFailures)
	v.SetDefault("notify.open_seconds", c.Notify.OpenSeconds)

	v.SetDefault("server.addr", c.Server.Addr)
}

func (c DatabaseConfig) BusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutMS) * time.Millisecond
}

// ServiceConfig converts the file settings into the service layer's types.
func (c *Config) ServiceConfig() (service.Config, error) {
	out := service.Config{
		Transfer: service.TransferConfig{
			MaxRetries: c.Transfer.MaxRetries,
			RetryBase:  time.Duration(c.Transfer.RetryBaseMS) * time.Millisecond,
		},
		Scheduler: service.SchedulerConfig{
			BatchSize:   c.Scheduler.BatchSize,
			Concurrency: c.Scheduler.Concurrency,
		},
	}

	if c.Transfer.MaxAmount != "" {
		amount, err := utils.ParseAmount(c.Transfer.MaxAmount)
		if err != nil {
			return service.Config{}, err
		}
		out.Transfer.MaxAmount = amount
	}
	if c.Transfer.RTGSMax != "" {
		amount, err := utils.ParseAmount(c.Transfer.RTGSMax)
		if err != nil {
			return service.Config{}, err
		}
		out.Transfer.RTGSMax = amount
	}
	return out, nil
}

func (c NotifyConfig) Webhook() notify.WebhookConfig {
	return notify.WebhookConfig{
		URL:          c.WebhookURL,
		Timeout:      time.Duration(c.WebhookTimeoutMS) * time.Millisecond,
		MaxFailures:  c.MaxFailures,
		OpenDuration: time.Duration(c.OpenSeconds) * time.Second,
	}
}
