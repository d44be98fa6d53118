package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/stapes/internal/app"
	"github.com/specialistvlad/stapes/internal/posterior"
)

// writeOutput sends write's output to path, or to the command's stdout when
// path is empty.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func newCompileCommand(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compile MODEL",
		Short: "Compile a model source file into a Stan program",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.app.Compile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				_, err := io.WriteString(w, m.Program())
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the program to a file instead of stdout.")
	return cmd
}

// schemaEntry is one config parameter as printed by the schema command.
type schemaEntry struct {
	Name      string   `yaml:"name"`
	DataType  string   `yaml:"type"`
	Default   float64  `yaml:"default"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
	Transform string   `yaml:"inv_transform,omitempty"`
}

func newSchemaCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema MODEL",
		Short: "List the config parameters a model accepts",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.app.Compile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			entries := []schemaEntry{}
			for _, p := range m.ConfigParameters() {
				entries = append(entries, schemaEntry{
					Name:      p.Name,
					DataType:  p.DataType,
					Default:   p.Default,
					Min:       p.Min,
					Max:       p.Max,
					Transform: p.InvTransform,
				})
			}
			return writeYAML(cmd.OutOrStdout(), entries)
		},
	}
}

func newParseCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse MODEL",
		Short: "Dump the syntax tree of a model source file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ast, err := opts.app.Parse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
			cfg.Fdump(cmd.OutOrStdout(), ast)
			return nil
		},
	}
}

func newDataCommand(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "data RUN",
		Short: "Build the Stan data file for a run file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := opts.app.DataPayload(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return app.WriteJSON(w, payload)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the data to a file instead of stdout.")
	return cmd
}

func newForecastCommand(opts *rootOptions) *cobra.Command {
	var (
		output  string
		samples []string
		seed    uint64
	)
	cmd := &cobra.Command{
		Use:   "forecast RUN",
		Short: "Complete a run's triangle from posterior draws",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(samples) == 0 {
				return usageError(fmt.Errorf("at least one --samples file is required"))
			}
			var override *uint64
			if cmd.Flags().Changed("seed") {
				override = &seed
			}
			rep, err := opts.app.Forecast(cmd.Context(), args[0], samples, override)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return writeYAML(w, rep)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&samples, "samples", "s", nil, "Posterior draws, one file per chain (.csv from CmdStan or .yaml) or a directory of them. Repeatable.")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Override the run file's forecast seed.")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout.")
	return cmd
}

func newSamplesCommand(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "samples PATH...",
		Short: "Merge per-chain posterior draws into one YAML sample file",
		Args:  minimumArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := app.ReadSamples(opts.app.Context(cmd.Context()), args)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return posterior.WriteYAML(w, set)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the merged samples to a file instead of stdout.")
	return cmd
}
