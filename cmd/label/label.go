// Package label provides the label command for sheriff
package label

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheriffhq/sheriff/cmd/common"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/workspace"
)

// Command creates and returns the label command
func Command(settings *conf.Settings) *cobra.Command {
	var (
		now   bool
		multi bool
	)

	cmd := &cobra.Command{
		Use:   "label <project> <asset> [label-id...]",
		Short: "Stage a label selection for an asset",
		Long: `Label stages the given label IDs as the selection of an asset. Staged edits
are kept between runs until they are submitted. With no label IDs the asset is
staged as unlabeled. Use --now to submit every staged edit right away.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := common.ParseLabelIDs(args[2:])
			if err != nil {
				return err
			}

			sess, err := common.OpenSession(cmd.Context(), settings, args[0])
			if err != nil {
				return err
			}
			path, err := common.RestoreStaged(cmd.ErrOrStderr(), sess)
			if err != nil {
				return err
			}
			if multi || len(ids) > 1 {
				sess.Dispatch(workspace.SetMultiLabel{Enabled: true})
			}

			st, ok := sess.Stage(args[1], ids)
			if !ok {
				return fmt.Errorf("asset %s not found in project %s", args[1], st.ProjectName)
			}
			draft := st.Draft()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", args[1], common.LabelNames(draft.LabelIDs, st.Labels), draft.Status)

			var submitErr error
			if now {
				st, submitErr = sess.SubmitPending(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), st.Message)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d staged edits\n", st.PendingCount())
			}

			if err := sess.SavePending(path); err != nil {
				return err
			}
			return submitErr
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "Submit staged edits immediately")
	cmd.Flags().BoolVar(&multi, "multi", false, "Allow more than one label per asset")

	return cmd
}
