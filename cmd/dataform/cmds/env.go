package cmds

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

type envOutput struct {
	Name    string `json:"name"    yaml:"name"`
	Host    string `json:"host"    yaml:"host"`
	APIURL  string `json:"api_url" yaml:"api_url"`
	Timeout string `json:"timeout" yaml:"timeout"`
}

func newEnvCmd(opts *rootOptions) *cobra.Command {
	output := outputYAML

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the environment the form would post to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, a, err := opts.loadApp()
			if err != nil {
				return err
			}

			env := envOutput{
				Name:    a.Environment.Name,
				Host:    a.Host,
				APIURL:  a.Environment.APIURL,
				Timeout: a.Environment.Timeout.String(),
			}

			var out []byte
			switch output {
			case outputJSON:
				out, err = json.MarshalIndent(env, "", "  ")
				out = append(out, '\n')
			default:
				out, err = yaml.Marshal(env)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().VarP(&output, "output", "o", `"yaml" or "json"`)

	return cmd
}
