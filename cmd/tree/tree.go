// Package tree provides the tree command for sheriff
package tree

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheriffhq/sheriff/cmd/common"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/workspace"
)

// Command creates and returns the tree command
func Command(settings *conf.Settings) *cobra.Command {
	var (
		folder    string
		collapsed []string
		width     int
	)

	cmd := &cobra.Command{
		Use:   "tree <project>",
		Short: "Print the folder tree of a project",
		Long:  `Tree prints the assets of a project grouped by their virtual folders, marking labeled and staged assets.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := common.OpenSession(cmd.Context(), settings, args[0])
			if err != nil {
				return err
			}
			if _, err := common.RestoreStaged(cmd.ErrOrStderr(), sess); err != nil {
				return err
			}

			if folder != "" {
				st := sess.Snapshot()
				if !st.Tree.HasFolder(folder) {
					return fmt.Errorf("folder %q not found in project %s", folder, st.ProjectName)
				}
				sess.Dispatch(workspace.SetFolderScope{Path: folder})
			}
			for _, path := range collapsed {
				sess.Dispatch(workspace.ToggleFolderCollapsed{Path: path})
			}

			st := sess.Snapshot()
			common.RenderTree(cmd.OutOrStdout(), st)
			if strip := common.PageStrip(st, width); strip != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", strip)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Limit navigation to this folder subtree")
	cmd.Flags().IntVar(&width, "width", 0, "Viewer width in pixels used to size the page strip")
	cmd.Flags().StringSliceVar(&collapsed, "collapse", nil, "Folders to show collapsed")

	return cmd
}
