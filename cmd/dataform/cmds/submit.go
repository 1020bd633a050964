package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aixcyberchallenge/data-form/internal/cmderrors"
	"github.com/aixcyberchallenge/data-form/internal/form"
)

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var fields form.Fields

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate and post one record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, a, err := opts.loadApp()
			if err != nil {
				return err
			}

			ui := newTerminalUI(cmd.OutOrStdout(), cmd.ErrOrStderr(), a.Logger, fields)
			outcome := form.NewController(a).Submit(cmd.Context(), ui)
			if !outcome.Succeeded() {
				// already shown on errOut
				return cmderrors.ExitErrorWrap(cmderrors.Code(outcome.Err), outcome.Err)
			}

			if outcome.Response != nil {
				fmt.Fprintln(cmd.OutOrStdout(), string(outcome.Response))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fields.Key, "key", "", "Record key (required)")
	cmd.Flags().StringVar(&fields.Value, "value", "", "Record value (required)")
	cmd.Flags().StringVar(&fields.Category, "category", "", "Optional category")
	cmd.Flags().StringVar(&fields.Description, "description", "", "Optional description")

	return cmd
}
