package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hance08/paycore/cmd/account"
	"github.com/hance08/paycore/cmd/instruction"
	"github.com/hance08/paycore/internal/app"
	"github.com/hance08/paycore/internal/config"
	"github.com/hance08/paycore/internal/errhandler"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// session holds the App built for the invoked command and its cleanup.
type session struct {
	cfgFile string
	app     *app.App
	cleanup func()
}

func (s *session) App() *app.App {
	return s.app
}

func (s *session) close() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func Execute(migrations fs.FS) {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	s := &session{}
	rootCmd := newRootCmd(s, migrations)

	err := rootCmd.Execute()
	s.close()
	if err != nil {
		errhandler.HandleError(err)
		os.Exit(1)
	}
}

func newRootCmd(s *session, migrations fs.FS) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "paycore",
		Short: "paycore moves money between accounts and runs standing instructions",
		Long: `paycore is the funds transfer engine and standing instruction scheduler.

It executes INTERNAL, UPI, NEFT and RTGS transfers, keeps recurring
payment orders, and sweeps the due ones on a schedule.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(s.cfgFile)
			if err != nil {
				return err
			}

			a, cleanup, err := app.NewApp(cfg, migrations)
			if err != nil {
				return err
			}
			s.app = a
			s.cleanup = cleanup
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&s.cfgFile, "config", "c", "", "set the config file path")

	rootCmd.AddCommand(account.NewAccountCmd(s.App))
	rootCmd.AddCommand(instruction.NewInstructionCmd(s.App))

	rootCmd.AddCommand(NewTransferCmd(s.App))
	rootCmd.AddCommand(NewSweepCmd(s.App))
	rootCmd.AddCommand(NewScheduleCmd(s.App))
	rootCmd.AddCommand(NewServeCmd(s.App))
	rootCmd.AddCommand(NewInfoCmd(s.App))

	return rootCmd
}

func initConfig(cfgFile string) (*config.Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		appDir, err := app.AppDataDir()
		if err != nil {
			return nil, fmt.Errorf("error getting app dir: %w", err)
		}

		v.AddConfigPath(appDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if err := createDefaultConfig(v, appDir); err != nil {
			return nil, fmt.Errorf("failed to ensure config file: %w", err)
		}
	}

	v.SetEnvPrefix("PAYCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := config.NewDefault()
	config.BindDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %v", err)
	}

	cfg.ConfigPath = v.ConfigFileUsed()

	return cfg, nil
}

// createDefaultConfig writes the defaults to config.yaml on first run.
func createDefaultConfig(v *viper.Viper, appDir string) error {
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(appDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	config.BindDefaults(v, config.NewDefault())
	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
