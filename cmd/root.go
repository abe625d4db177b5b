package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/iconkit/internal/app"
	"github.com/zjrosen/iconkit/internal/config"
	"github.com/zjrosen/iconkit/internal/log"
)

// localConfigPath is checked before the user config and is where `iconkit
// init` and `iconkit alias add` write when no config file was loaded.
const localConfigPath = ".iconkit/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	logFile   string
	cfg       config.Config
	cfgErr    error
)

var rootCmd = &cobra.Command{
	Use:   "iconkit",
	Short: "Resolve, render and collect SVG icons",
	Long: `iconkit resolves icon references such as "hero:pencil" against bundled
icon packs, local icon directories and aliases, renders them as inline SVG
and copies the icons your templates use into a static directory.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.iconkit/config.yaml or ~/.config/iconkit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (also ICONKIT_DEBUG=1 or ICONKIT_DEBUG=cache,store)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write debug logs to this file instead of stderr")
}

func initConfig() {
	cfg, cfgErr = loadConfig(viper.GetViper(), cfgFile)
}

// loadConfig applies defaults, reads the config file and environment and
// decodes the result. Lookup order without an explicit path:
//  1. .iconkit/config.yaml (current directory)
//  2. ~/.config/iconkit/config.yaml (user config)
//
// A missing config file is not an error; defaults apply.
func loadConfig(v *viper.Viper, path string) (config.Config, error) {
	config.SetDefaults(v)
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else if _, err := os.Stat(localConfigPath); err == nil {
		v.SetConfigFile(localConfigPath)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "iconkit"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
		log.Debug(log.CatConfig, "No config file found, using defaults")
	}
	return config.Load(v)
}

func initLogging() error {
	env := os.Getenv("ICONKIT_DEBUG")
	if !debugFlag && env == "" {
		return nil
	}
	cats, err := log.ParseCategories(env)
	if err != nil {
		return fmt.Errorf("ICONKIT_DEBUG: %w", err)
	}

	if logFile != "" {
		if _, err := log.Init(logFile); err != nil {
			return err
		}
	} else {
		log.InitWithWriter(os.Stderr)
	}
	log.SetCategories(cats...)
	log.Info(log.CatConfig, "iconkit starting", "version", version, "config", viper.ConfigFileUsed())
	return nil
}

// configPath returns the config file that was loaded, or the local default
// when none was.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			return used
		}
	}
	return localConfigPath
}

// openApp builds the icon system from the loaded configuration.
func openApp() (*app.App, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	a, err := app.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("building icon registry: %w", err)
	}
	return a, nil
}

// ExecuteContext runs the root command. Cancelling ctx stops long-running
// commands such as watch.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
