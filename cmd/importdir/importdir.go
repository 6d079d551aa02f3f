// Package importdir provides the import command for sheriff
package importdir

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheriffhq/sheriff/internal/client"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/importing"
	"github.com/sheriffhq/sheriff/internal/session"
)

// Command creates and returns the import command
func Command(settings *conf.Settings) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "import <project> <directory>",
		Short: "Register the images of a local directory as assets",
		Long: `Import walks a directory and registers every image as an asset of the
project. Files keep their position below the directory and are placed under
the virtual folder given by --folder, which defaults to the directory name.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, root := args[0], args[1]
			if folder == "" {
				folder = importing.NormalizeFolderName(filepath.Base(filepath.Clean(root)))
			}

			c := client.NewFromSettings(settings)
			defer c.Close()
			sess := session.NewFromSettings(c, settings)

			out := cmd.OutOrStdout()
			result, err := sess.ImportDirectory(cmd.Context(), session.ImportRequest{
				ProjectID: projectID,
				Root:      root,
				Folder:    folder,
				Progress: func(p importing.Progress) {
					v := p.View(time.Now())
					fmt.Fprintf(out, "%3d%%  %s  %s  eta %s\n", v.Percent, v.Progress, v.Speed, v.ETA)
				},
			})
			if err != nil {
				return err
			}

			for _, f := range result.Skipped {
				fmt.Fprintf(out, "skipped %s\n", f.RelativePath)
			}
			for _, f := range result.Failed {
				fmt.Fprintf(out, "failed %s\n", f.RelativePath)
			}
			fmt.Fprintf(out, "imported %d files into %s in %s\n",
				len(result.Created), folder, importing.FormatDuration(time.Since(result.Final.StartedAt).Seconds()))
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d files failed to import", len(result.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Virtual folder for the imported files")

	return cmd
}
