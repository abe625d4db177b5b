package cmd

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/iconkit/internal/flags"
	"github.com/zjrosen/iconkit/internal/presentation"
)

var flagsJSON bool

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "List feature flags and their resolved values",
	Long: `List every known feature flag with the value resolved from the flags
section of the config file.

Examples:
  iconkit flags
  iconkit flags --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return cfgErr
		}
		return runFlags(cmd.OutOrStdout(), flags.New(cfg.Flags), flagsJSON)
	},
}

func init() {
	flagsCmd.Flags().BoolVar(&flagsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(flagsCmd)
}

type flagDTO struct {
	flags.Definition
	Enabled bool `json:"enabled"`
}

func runFlags(w io.Writer, r *flags.Registry, asJSON bool) error {
	out := make([]flagDTO, 0, len(flags.Definitions))
	for _, d := range flags.Definitions {
		out = append(out, flagDTO{Definition: d, Enabled: r.Enabled(d.Name)})
	}
	f := presentation.NewFormatter(w)
	if asJSON {
		return f.FormatJSON(out)
	}

	fields := make([]presentation.Field, 0, len(out))
	for _, d := range out {
		fields = append(fields, presentation.Field{
			Key:   d.Name,
			Value: strconv.FormatBool(d.Enabled) + "  " + d.Description,
		})
	}
	return f.FormatFields(fields)
}
