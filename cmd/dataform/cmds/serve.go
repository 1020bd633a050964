package cmds

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aixcyberchallenge/data-form/internal/form"
	"github.com/aixcyberchallenge/data-form/internal/routes"
	"github.com/aixcyberchallenge/data-form/internal/webform"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form as an HTML page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, a, err := opts.loadApp()
			if err != nil {
				return err
			}

			e := routes.BuildEcho(a.Logger, "dataform-web")
			if err := webform.NewHandler(a, form.NewController(a)).AddRoutes(e); err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				a.Logger.Info("serving form", "address", listen)
				err := e.Start(listen)
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				a.Logger.Info("Got shutdown signal!")

				ctx, cancel := context.WithTimeout(
					context.Background(),
					time.Second*time.Duration(cfg.GracefulShutdownSecs),
				)
				defer cancel()

				return e.Shutdown(ctx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8080", "Address the form page listens on")

	return cmd
}
