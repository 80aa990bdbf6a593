package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newsportal/reader/cmd/config"
	"github.com/newsportal/reader/cmd/read"
	"github.com/newsportal/reader/cmd/serve"
	"github.com/newsportal/reader/cmd/status"
	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/logging"
)

// RootCommand creates and returns the root command. Settings are loaded into
// settings after flags are parsed and before any subcommand runs.
func RootCommand(settings *conf.Settings) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "reader",
		Short:         "Blog reader front end",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := setupFlags(rootCmd, &configPath); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	rootCmd.AddCommand(
		serve.Command(settings),
		status.Command(settings),
		read.Command(settings),
		config.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initialize(settings, configPath)
	}

	return rootCmd
}

// initialize loads the configuration and applies the log level.
func initialize(settings *conf.Settings, configPath string) error {
	if configPath != "" {
		conf.SetConfigFile(configPath)
	}

	loaded, err := conf.Load()
	if err != nil {
		return err
	}
	version, buildDate := settings.Version, settings.BuildDate
	*settings = *loaded
	settings.Version, settings.BuildDate = version, buildDate

	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}
	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configPath *string) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(configPath, "config", "", "Path to the configuration file")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("api-base", "", "Base URL of the blog API")
	flags.String("locale", "", "UI language (en, ru)")

	bindings := map[string]string{
		"debug":    "debug",
		"api-base": "api.baseurl",
		"locale":   "ui.locale",
	}
	for flag, key := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}
