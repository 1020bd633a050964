package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aixcyberchallenge/data-form/internal/form"
)

func newFetchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Print what the data endpoint currently returns, or null",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, a, err := opts.loadApp()
			if err != nil {
				return err
			}

			data := form.NewController(a).LoadExisting(cmd.Context())
			if data == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "null")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
