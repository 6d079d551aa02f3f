// Package remove provides the delete command for sheriff
package remove

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheriffhq/sheriff/cmd/common"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/session"
)

// Command creates and returns the delete command
func Command(settings *conf.Settings) *cobra.Command {
	var (
		folder  string
		project bool
	)

	cmd := &cobra.Command{
		Use:   "delete <project> [asset...]",
		Short: "Delete assets, a folder or a whole project",
		Long: `Delete removes the listed assets, every asset under --folder, or with
--project the project itself. Assets are deleted one at a time and the run
reports how many were removed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !project && folder == "" && len(args) < 2 {
				return errors.New("name assets to delete or pass --folder or --project")
			}

			sess, err := common.OpenSession(cmd.Context(), settings, args[0])
			if err != nil {
				return err
			}
			path, err := common.RestoreStaged(cmd.ErrOrStderr(), sess)
			if err != nil {
				return err
			}

			if project {
				st, err := sess.DeleteProject(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), st.Message)
				return err
			}

			var (
				summary   session.DeleteSummary
				deleteErr error
			)
			if folder != "" {
				summary, deleteErr = sess.DeleteFolder(cmd.Context(), folder)
			} else {
				name := sess.Snapshot().ProjectName
				summary, deleteErr = sess.DeleteAssets(cmd.Context(), args[1:], fmt.Sprintf(`project "%s"`, name))
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.Message)

			// staged edits of removed assets are gone from the workspace
			if err := sess.SavePending(path); err != nil {
				return err
			}
			return deleteErr
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Delete every asset in this folder subtree")
	cmd.Flags().BoolVar(&project, "project", false, "Delete the project with all of its assets and annotations")
	cmd.MarkFlagsMutuallyExclusive("folder", "project")

	return cmd
}
