package cmds

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"

	"github.com/aixcyberchallenge/data-form/internal/app"
	"github.com/aixcyberchallenge/data-form/internal/cmderrors"
	"github.com/aixcyberchallenge/data-form/internal/dataapi"
)

func newPingCmd(opts *rootOptions) *cobra.Command {
	var (
		retries   int
		retryWait time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the data endpoint answers GET with JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, a, err := opts.loadApp()
			if err != nil {
				return err
			}

			rc := retryablehttp.NewClient()
			rc.HTTPClient = app.NewHTTPClient(a.Environment)
			rc.Logger = a.Logger
			rc.RetryMax = retries
			rc.RetryWaitMin = retryWait
			rc.RetryWaitMax = 8 * retryWait

			client := dataapi.NewClient(a.Environment.APIURL, rc.StandardClient())
			if _, err := client.Fetch(cmd.Context()); err != nil {
				a.Logger.Error("data endpoint unreachable", "endpoint", client.Endpoint(), "error", err)
				return cmderrors.ExitErrorWrap(cmderrors.CodeRequest, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s reachable (%s)\n", client.Endpoint(), a.Environment.Name)
			return nil
		},
	}

	cmd.Flags().IntVar(&retries, "retries", 3, "Retries after the first attempt")
	cmd.Flags().DurationVar(&retryWait, "retry-wait", time.Second, "Minimum wait between attempts")

	return cmd
}
