// Package status provides the status command for sheriff
package status

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sheriffhq/sheriff/cmd/common"
	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/conf"
)

// Command creates and returns the status command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <project>",
		Short: "Summarize the review progress of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := common.OpenSession(cmd.Context(), settings, args[0])
			if err != nil {
				return err
			}
			path, err := common.RestoreStaged(cmd.ErrOrStderr(), sess)
			if err != nil {
				return err
			}
			st := sess.Snapshot()

			labeled := 0
			for _, a := range st.Assets {
				if assettree.IsLabeled(a.ID, st.Pending, st.Annotations) {
					labeled++
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "project:\t%s (%s)\n", st.ProjectName, st.ProjectID)
			fmt.Fprintf(w, "assets:\t%d\n", len(st.Assets))
			fmt.Fprintf(w, "labeled:\t%d\n", labeled)
			fmt.Fprintf(w, "annotations:\t%d\n", len(st.Annotations))
			fmt.Fprintf(w, "staged edits:\t%d\t%s\n", st.PendingCount(), path)
			fmt.Fprintf(w, "active labels:\t%d/%d\n", len(st.ActiveLabels()), len(st.Labels))

			statuses := st.FolderStatuses()
			for _, folder := range slices.Sorted(maps.Keys(statuses)) {
				fmt.Fprintf(w, "  %s\t%s\n", folder, statuses[folder])
			}
			return w.Flush()
		},
	}

	return cmd
}
