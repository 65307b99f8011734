package main

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/norceresearch/helics-fmi/internal/bus/inprocess"
	"github.com/norceresearch/helics-fmi/internal/runner"
)

func newRootCommand() *cobra.Command {
	var (
		opts    runner.Options
		verbose bool
	)

	v := viper.New()
	v.SetEnvPrefix("HELICS_FMI")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "helics-fmi [flags] <fmu-or-config>...",
		Short: "Run FMUs as co-simulation federates on the bus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Inputs = args
			applyViperOverlay(v, &opts, &verbose)
			opts.Flags = splitCommaFlags(opts.Flags)

			logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true})
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}

			factory := inprocess.NewFactory()
			r := runner.New(opts, logger, factory)

			ctx := context.Background()
			if err := r.Load(ctx); err != nil {
				return err
			}
			defer r.Close(ctx)

			if err := r.Initialize(); err != nil {
				return err
			}
			return r.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Step, "step", "", "simulation step size (e.g. 0.1s, 100ms)")
	flags.StringVar(&opts.Stop, "stop", "", "simulation stop time")
	flags.StringVar(&opts.Integrator, "integrator", "", "model-exchange integrator name")
	flags.StringVar(&opts.IntegratorArgs, "integrator-args", "", "integrator arguments")
	flags.StringVar(&opts.BrokerArgs, "brokerargs", "", "extra broker init-string arguments")
	flags.StringArrayVar(&opts.Set, "set", nil, "k=v parameter assignment (repeatable; k=v;k=v also accepted)")
	flags.StringArray("connections", nil, "a,b cross-FMU data link (repeatable)")
	flags.StringArrayVar(&opts.FMUPath, "fmupath", nil, "search path for unresolved positional inputs (repeatable)")
	flags.StringVar(&opts.ExtractPath, "extractpath", "", "directory to extract FMU archives into")
	flags.BoolVar(&opts.CoSimulation, "cosim", true, "prefer the FMU's co-simulation interface")
	flags.BoolVar(&opts.ModelExchange, "modelexchange", false, "prefer the FMU's model-exchange interface")
	flags.StringArrayVar(&opts.Flags, "flags", nil, "+flag/-flag instance flag toggle (repeatable, comma-separated)")
	flags.StringArrayVar(&opts.OutputVariables, "output_variables", nil, "restrict the active output set (repeatable, or \"all\")")
	flags.StringArrayVar(&opts.InputVariables, "input_variables", nil, "restrict the active input set (repeatable, or \"all\")")
	flags.StringVar(&opts.FederateName, "name", "", "federate name")
	flags.StringVar(&opts.CoreType, "coretype", "", "bus core type")
	flags.StringVar(&opts.BrokerAddress, "brokeraddress", "", "broker network address")
	flags.BoolVar(&opts.AutoBroker, "autobroker", false, "start a broker automatically")
	flags.StringVar(&opts.BrokerInitString, "brokerinitstring", "", "broker init-string")
	flags.StringVar(&opts.CaptureFile, "capture", "", "CSV output capture file path")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}

// applyViperOverlay re-reads every bound flag through v, so an unset flag
// falls back to its HELICS_FMI_* environment variable before the pflag
// default (§4.7.2's env/flag overlay), the precedence viper.BindPFlags
// gives for free once something actually reads the values back.
func applyViperOverlay(v *viper.Viper, opts *runner.Options, verbose *bool) {
	opts.Step = v.GetString("step")
	opts.Stop = v.GetString("stop")
	opts.Integrator = v.GetString("integrator")
	opts.IntegratorArgs = v.GetString("integrator-args")
	opts.BrokerArgs = v.GetString("brokerargs")
	opts.Set = v.GetStringSlice("set")
	opts.Connections = v.GetStringSlice("connections")
	opts.FMUPath = v.GetStringSlice("fmupath")
	opts.ExtractPath = v.GetString("extractpath")
	opts.CoSimulation = v.GetBool("cosim")
	opts.ModelExchange = v.GetBool("modelexchange")
	opts.Flags = v.GetStringSlice("flags")
	opts.OutputVariables = v.GetStringSlice("output_variables")
	opts.InputVariables = v.GetStringSlice("input_variables")
	opts.FederateName = v.GetString("name")
	opts.CoreType = v.GetString("coretype")
	opts.BrokerAddress = v.GetString("brokeraddress")
	opts.AutoBroker = v.GetBool("autobroker")
	opts.BrokerInitString = v.GetString("brokerinitstring")
	opts.CaptureFile = v.GetString("capture")
	*verbose = v.GetBool("verbose")
}

// splitCommaFlags expands "f1,f2,-f3" tokens collected by --flags into
// individual +flag/-flag tokens (§4.7.2).
func splitCommaFlags(raw []string) []string {
	var out []string
	for _, entry := range raw {
		out = append(out, strings.Split(entry, ",")...)
	}
	return out
}

func exitCodeFor(err error) int {
	var runErr *runner.RunError
	if stderrors.As(err, &runErr) {
		return int(runErr.Code)
	}
	return 1
}
