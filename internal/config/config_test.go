package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/hance08/paycore/internal/config"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewDefault()
	cfg.Transfer.RTGSMax = "2,500,000"

	svcCfg, err := cfg.ServiceConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, svcCfg.Transfer.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, svcCfg.Transfer.RetryBase)
	assert.True(t, decimal.NewFromInt(1_000_000).Equal(svcCfg.Transfer.MaxAmount))
	assert.True(t, decimal.NewFromInt(2_500_000).Equal(svcCfg.Transfer.RTGSMax))
	assert.Equal(t, 500, svcCfg.Scheduler.BatchSize)
	assert.Equal(t, 4, svcCfg.Scheduler.Concurrency)

	cfg.Transfer.MaxAmount = "lots"
	_, err = cfg.ServiceConfig()
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.NewDefault()
	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout())
	assert.Equal(t, "0 6 * * *", cfg.Scheduler.Cron)

	hook := cfg.Notify.Webhook()
	assert.Equal(t, 3*time.Second, hook.Timeout)
	assert.Equal(t, 30*time.Second, hook.OpenDuration)
}

func TestBindDefaultsAllowsEnvOverrides(t *testing.T) {
	t.Setenv("PAYCORE_DATABASE_DRIVER", "memory")
	t.Setenv("PAYCORE_SCHEDULER_CONCURRENCY", "9")

	v := viper.New()
	v.SetEnvPrefix("PAYCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := config.NewDefault()
	config.BindDefaults(v, cfg)
	require.NoError(t, v.Unmarshal(cfg))

	assert.Equal(t, config.DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 9, cfg.Scheduler.Concurrency)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "1000000", cfg.Transfer.MaxAmount)
}
