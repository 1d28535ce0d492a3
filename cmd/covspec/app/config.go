package app

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjy-dev/covspec/internal/config"
)

// NewConfigCommand creates the "config" subcommand.
func NewConfigCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved code coverage options.",
		Long: `Print the code_coverage options after merging the configuration file
with the built-in defaults.

Examples:
  covspec config
  covspec config --config ./ci/covspec.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := global.loadRaw()
			if err != nil {
				return err
			}
			opts, err := config.Resolve(raw)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(map[string]config.Options{config.SectionName: opts})
			if err != nil {
				return errors.Wrap(err, "failed to encode options")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
