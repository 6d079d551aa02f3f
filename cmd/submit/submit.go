// Package submit provides the submit command for sheriff
package submit

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheriffhq/sheriff/cmd/common"
	"github.com/sheriffhq/sheriff/internal/conf"
)

// Command creates and returns the submit command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <project>",
		Short: "Save every staged edit of a project",
		Long:  `Submit saves the staged edits of a project in asset order. Edits that fail to save stay staged.`,
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

			st, submitErr := sess.SubmitPending(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), st.Message)

			if err := sess.SavePending(path); err != nil {
				return err
			}
			return submitErr
		},
	}

	return cmd
}
