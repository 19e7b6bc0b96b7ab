package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"meetmatch/internal/config"
	applog "meetmatch/pkg/log"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	EnvFile    string
	LogLevel   string
}

// NewRootCommand creates the root command of the meetmatch binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "meetmatch",
		Short:         "Event-based dating backend",
		Long:          "meetmatch serves the swipe, match, chat and event APIs of the dating app.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (yaml, json, toml or env)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		applog.Logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// loadConfig reads the dotenv file, the optional config file and the
// environment, then initializes logging.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.EnvFile != "" {
		// A missing dotenv file is normal outside local development.
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	}
	if opts.LogLevel != "" {
		v.Set("LOG_LEVEL", opts.LogLevel)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	applog.Init(applog.Config{
		Level:      cfg.LogLevel,
		JSONOutput: cfg.LogJSON,
	})
	return cfg, nil
}
