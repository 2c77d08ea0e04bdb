package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkingovr/pipefilter/internal/config"
)

const (
	envPrefix = "PIPEFILTER"

	keyDataDir = "data_dir"
	keyLogDir  = "log_dir"
	keyListen  = "listen"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger

	overrides = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "pipefilter",
	Short: "pipefilter - filtered extraction for transport nodes",
	Long: `pipefilter runs the extraction filter of a transport node: nine filter
slots, whitelist, blacklist and round-robin modes, persisted state and a
sync stream for observers.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "node config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for persisted node records")
	rootCmd.PersistentFlags().String("log-dir", "", "directory for the extraction log")
	rootCmd.PersistentFlags().String("listen", "", "configuration server listen address")

	_ = overrides.BindPFlag(keyDataDir, rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = overrides.BindPFlag(keyLogDir, rootCmd.PersistentFlags().Lookup("log-dir"))
	_ = overrides.BindPFlag(keyListen, rootCmd.PersistentFlags().Lookup("listen"))
	overrides.SetEnvPrefix(envPrefix)
	overrides.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	overrides.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file, or the defaults when none is given, and
// applies flag and PIPEFILTER_* environment overrides on top.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if cfgFile != "" {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	if overrides.IsSet(keyDataDir) {
		cfg.DataDir = overrides.GetString(keyDataDir)
	}
	if overrides.IsSet(keyLogDir) {
		cfg.LogDir = overrides.GetString(keyLogDir)
	}
	if overrides.IsSet(keyListen) {
		cfg.Listen = overrides.GetString(keyListen)
	}
	return cfg, nil
}
