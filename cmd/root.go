package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sheriffhq/sheriff/cmd/export"
	"github.com/sheriffhq/sheriff/cmd/importdir"
	"github.com/sheriffhq/sheriff/cmd/label"
	"github.com/sheriffhq/sheriff/cmd/migrate"
	"github.com/sheriffhq/sheriff/cmd/remove"
	"github.com/sheriffhq/sheriff/cmd/serve"
	"github.com/sheriffhq/sheriff/cmd/status"
	"github.com/sheriffhq/sheriff/cmd/submit"
	"github.com/sheriffhq/sheriff/cmd/tree"
	"github.com/sheriffhq/sheriff/internal/buildinfo"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/logger"
	"github.com/sheriffhq/sheriff/internal/telemetry"
)

// RootCommand creates and returns the root command. settings is filled in
// by the persistent pre-run hook before any sub-command runs.
func RootCommand(settings *conf.Settings, info *buildinfo.Context) *cobra.Command {
	var (
		configFile string
		reporter   *telemetry.Reporter
	)

	rootCmd := &cobra.Command{
		Use:           "sheriff",
		Short:         "Sheriff image annotation workspace",
		Version:       info.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().String("server", "", "Backend API base URL, for example http://127.0.0.1:8080/api/v1")

	rootCmd.AddCommand(
		serve.Command(settings, info),
		tree.Command(settings),
		status.Command(settings),
		label.Command(settings),
		submit.Command(settings),
		remove.Command(settings),
		export.Command(settings),
		importdir.Command(settings),
		migrate.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlag("debug", cmd.Flags().Lookup("debug")); err != nil {
			return fmt.Errorf("error binding debug flag: %w", err)
		}
		if err := viper.BindPFlag("client.baseurl", cmd.Flags().Lookup("server")); err != nil {
			return fmt.Errorf("error binding server flag: %w", err)
		}

		loaded, err := conf.Load(configFile)
		if err != nil {
			return err
		}
		*settings = *loaded

		if err := initLogging(settings); err != nil {
			return err
		}
		reporter, err = telemetry.Setup(settings.Telemetry.Sentry, info.GetVersion())
		return err
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		reporter.Close()
		return logger.Global().Flush()
	}

	return rootCmd
}

// initLogging installs the central logger described by the logging settings
func initLogging(settings *conf.Settings) error {
	if settings.Debug {
		settings.Logging.DefaultLevel = "debug"
	}
	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)
	return nil
}
