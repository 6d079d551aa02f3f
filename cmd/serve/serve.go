// Package serve provides the serve command for sheriff
package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheriffhq/sheriff/internal/api"
	"github.com/sheriffhq/sheriff/internal/buildinfo"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/datastore"
	"github.com/sheriffhq/sheriff/internal/logger"
	"github.com/sheriffhq/sheriff/internal/observability"
)

// Command creates and returns the serve command
func Command(settings *conf.Settings, info *buildinfo.Context) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the annotation REST API",
		Long:  `Serve opens the configured database and exposes projects, categories, assets, annotations and exports under the API base path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				settings.Server.Listen = listen
			}
			return runServe(settings, info)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on, overrides server.listen")

	return cmd
}

func runServe(settings *conf.Settings, info *buildinfo.Context) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("unsupported database type: %s", settings.Database.Type)
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.Global().Module("serve").Error("failed to close database", logger.Error(err))
		}
	}()

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}
	if err := ds.SetMetrics(m.Datastore); err != nil {
		return fmt.Errorf("failed to register datastore metrics: %w", err)
	}

	server, err := api.New(settings, api.WithDataStore(ds), api.WithMetrics(m), api.WithBuildInfo(info))
	if err != nil {
		return err
	}
	return server.StartWithGracefulShutdown()
}
