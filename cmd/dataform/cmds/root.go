package cmds

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aixcyberchallenge/data-form/internal/app"
	"github.com/aixcyberchallenge/data-form/internal/cmderrors"
	"github.com/aixcyberchallenge/data-form/internal/config"
	"github.com/aixcyberchallenge/data-form/internal/logger"
)

// flags shared by every subcommand
type rootOptions struct {
	configFile string
	host       string
}

// NewRootCmd builds the dataform command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "dataform",
		Short:         "Collects a key/value record and posts it to the data API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to dataform.yaml")
	rootCmd.PersistentFlags().StringVar(
		&opts.host,
		"host",
		"",
		`Host name used to pick the environment, "localhost" selects development`,
	)

	rootCmd.AddCommand(
		newSubmitCmd(opts),
		newFetchCmd(opts),
		newPingCmd(opts),
		newEnvCmd(opts),
		newServeCmd(opts),
		newWatchCmd(opts),
	)

	return rootCmd
}

func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// Load config and apply its log level. Failures carry the config exit code.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, cmderrors.ExitErrorWrap(cmderrors.CodeConfig, err)
	}

	logger.SetLevel(cfg.Logging.App.Level)
	return cfg, nil
}

func (o *rootOptions) loadApp() (*config.Config, *app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	return cfg, app.New(cfg, app.HostName(cfg, o.host)), nil
}
