package app

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/console"
	"github.com/zjy-dev/covspec/internal/logger"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
	noColor    bool
	logLevel   string
}

func (o *globalOptions) console() *console.Console {
	return console.Stdout(console.WithVerbose(o.verbose), console.WithDecorated(!o.noColor && !color.NoColor))
}

func (o *globalOptions) loadRaw() (config.Raw, error) {
	return config.Load(o.configPath)
}

// NewCovspecCommand creates the root command for the covspec tool.
func NewCovspecCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "covspec",
		Short: "Code coverage for spec-style Go test suites.",
		Long: `covspec measures code coverage per example and writes coverage reports
when the suite ends.

Options are read from the code_coverage section of covspec.yml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetLevel(opts.logLevel)
			if opts.noColor {
				color.NoColor = true
				logger.SetColorEnable(false)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to the configuration file (default: covspec.yml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print progress while generating reports")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}
