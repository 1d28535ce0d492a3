package app

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/covspec/internal/exec"
	"github.com/zjy-dev/covspec/internal/extension"
	"github.com/zjy-dev/covspec/internal/runner"
)

// NewRunCommand creates the "run" subcommand.
func NewRunCommand(global *globalOptions) *cobra.Command {
	var coverPkg string

	cmd := &cobra.Command{
		Use:   "run [packages]",
		Short: "Run every test as one example and write coverage reports.",
		Long: `Run each test of the given packages (default ./...) on its own with
"go test -run ^Name$ -coverprofile", measuring coverage per example,
then write every configured report.

Examples:
  covspec run
  covspec run -v ./internal/...
  covspec run --coverpkg ./... ./internal/calc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := global.loadRaw()
			if err != nil {
				return err
			}

			io := global.console()
			ext, err := extension.Load(raw, extension.Dependencies{IO: io, Fs: afero.NewOsFs()})
			if err != nil {
				return err
			}

			r := runner.New(runner.Config{
				Executor:  exec.NewCommandExecutor(),
				Lifecycle: ext.Listener,
				Profile:   ext.Session.ProfilePath(),
				CoverPkg:  coverPkg,
			})
			result, err := r.Run(cmd.Context(), args)
			if err != nil {
				return err
			}

			if !result.OK() {
				for _, ex := range result.Failed {
					io.Warning("FAIL %s", ex.Label())
				}
				return errors.Newf("%d of %d examples failed", len(result.Failed), len(result.Failed)+len(result.Passed))
			}
			io.Success("%d examples passed", len(result.Passed))
			return nil
		},
	}

	cmd.Flags().StringVar(&coverPkg, "coverpkg", "", "packages to measure, passed to go test -coverpkg")

	return cmd
}
