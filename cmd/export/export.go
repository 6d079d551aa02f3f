// Package export provides the export command for sheriff
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheriffhq/sheriff/internal/client"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/export"
)

// Command creates and returns the export command
func Command(settings *conf.Settings) *cobra.Command {
	var (
		out  string
		list bool
	)

	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Create a dataset version of a project",
		Long:  `Export asks the backend to snapshot the project into a content addressed dataset version. With --out the manifest is also written to a zip archive.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.NewFromSettings(settings)
			defer c.Close()

			if list {
				versions, err := c.ListExports(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, v := range versions {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", v.ID, v.Hash, v.ExportURI)
				}
				return nil
			}

			version, err := c.CreateExport(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\nhash: %s\nuri: %s\n", version.ID, version.Hash, version.ExportURI)

			if out == "" {
				return nil
			}
			return writeArchive(out, version)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the manifest to this zip file")
	cmd.Flags().BoolVar(&list, "list", false, "List existing dataset versions instead of creating one")

	return cmd
}

func writeArchive(path string, version client.ExportVersion) error {
	raw, err := json.Marshal(version.Manifest)
	if err != nil {
		return fmt.Errorf("error encoding manifest: %w", err)
	}
	var manifest export.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return fmt.Errorf("error decoding manifest: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating archive: %w", err)
	}
	if err := export.WriteArchive(f, manifest, time.Now()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
