package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func (f *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Path to the YAML config file")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format (json, text)")
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "resumer",
		Short: "Resume failed workflow executions from the state they failed in",
		Long: `resumer decides, for every lifecycle event of a deployed resource, whether to start a
new execution of its workflow, resume the last execution from the state it failed in, or leave it
alone.

Run it as a CloudFormation custom resource with 'resumer lambda', handle single events with
'resumer handle', or keep resources reconciled with 'resumer serve'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags.register(cmd.PersistentFlags())

	cmd.AddCommand(
		newHandleCommand(flags),
		newLambdaCommand(flags),
		newAugmentCommand(),
		newServeCommand(flags),
		newStatusCommand(flags),
	)

	return cmd
}
