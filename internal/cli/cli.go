package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/stapes/internal/app"
	"github.com/specialistvlad/stapes/internal/hcl_adapter"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// minimumArgs is cobra.MinimumNArgs reporting a usage error.
func minimumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// rootOptions are the flags every subcommand shares.
type rootOptions struct {
	logFormat       string
	logLevel        string
	minPositiveMean float64
	floor           float64

	app *app.App
}

// NewRootCommand builds the command tree. Artifacts go to out, logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "stapes",
		Short: "Compile loss-triangle models to Stan and complete triangles from posterior draws.",
		Long: `stapes compiles a small modelling language for loss triangles into a Stan
program, lays observed triangles out as the program's data and completes the
triangle from the posterior draws of a fit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			slog.Debug("CLI parser started.", "command", cmd.Name())
			cfg, err := app.NewConfig(app.Config{
				LogFormat:       strings.ToLower(opts.logFormat),
				LogLevel:        strings.ToLower(opts.logLevel),
				MinPositiveMean: opts.minPositiveMean,
				Floor:           opts.floor,
			})
			if err != nil {
				return usageError(err)
			}
			a, err := app.NewApp(errOut, cfg, hcl_adapter.NewLoader())
			if err != nil {
				return usageError(err)
			}
			opts.app = a
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.Float64Var(&opts.minPositiveMean, "min-positive-mean", 0, "Smallest mean handed to positive families when forecasting. 0 keeps the default.")
	flags.Float64Var(&opts.floor, "floor", 0, "Lower bound for every forecast draw. 0 keeps the default.")

	root.AddCommand(
		newCompileCommand(opts),
		newSchemaCommand(opts),
		newParseCommand(opts),
		newDataCommand(opts),
		newForecastCommand(opts),
		newSamplesCommand(opts),
	)
	return root
}

// Execute runs the command tree against args.
func Execute(args []string, out, errOut io.Writer) error {
	if args == nil {
		args = []string{}
	}
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if strings.HasPrefix(err.Error(), "unknown command") {
			return usageError(fmt.Errorf("%w\nRun 'stapes --help' for usage", err))
		}
		return err
	}
	return nil
}
