package cmds

import "errors"

type outputFormat string

const (
	outputYAML outputFormat = "yaml"
	outputJSON outputFormat = "json"
)

// Allow use as a cobra flag

func (o outputFormat) String() string {
	return string(o)
}

func (o *outputFormat) Set(v string) error {
	switch format := outputFormat(v); format {
	case outputYAML, outputJSON:
		*o = format
		return nil
	default:
		return errors.New(`must be one of "yaml" or "json"`)
	}
}

func (*outputFormat) Type() string {
	return "format"
}
