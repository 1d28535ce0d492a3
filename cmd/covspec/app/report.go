package app

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/covspec/internal/extension"
)

// NewReportCommand creates the "report" subcommand.
func NewReportCommand(global *globalOptions) *cobra.Command {
	var (
		profile string
		label   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the configured reports for an existing cover profile.",
		Long: `Import a cover profile written by "go test -coverprofile" as a single
example and write every configured report.

Examples:
  go test -coverprofile=coverage.out ./...
  covspec report --profile coverage.out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := global.loadRaw()
			if err != nil {
				return err
			}

			fs := afero.NewOsFs()
			ext, err := extension.Load(raw, extension.Dependencies{
				IO:    global.console(),
				Fs:    fs,
				Probe: func() bool { return true },
			})
			if err != nil {
				return err
			}

			f, err := fs.Open(profile)
			if err != nil {
				return errors.Wrapf(err, "failed to open profile %s", profile)
			}
			defer f.Close()

			if err := ext.Listener.BeforeSuite(); err != nil {
				return err
			}
			if err := ext.Session.Import(f, label); err != nil {
				return err
			}
			return ext.Listener.AfterSuite()
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "coverage.out", "cover profile to import")
	cmd.Flags().StringVar(&label, "label", "", "example label recorded for the imported coverage")

	return cmd
}
