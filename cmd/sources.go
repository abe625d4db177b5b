package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/iconkit/internal/app"
	"github.com/zjrosen/iconkit/internal/presentation"
)

var sourcesJSON bool

var sourcesCmd = &cobra.Command{
	Use:     "sources <ref>",
	Aliases: []string{"diff"},
	Short:   "Show every loader that can serve an icon",
	Long: `Show which loaders can serve a reference, in precedence order. The
active source (the one rendering uses) is marked with "*"; every shadowed
source is diffed against it.

Useful when an icon directory overrides a bundled pack icon and you want
to see what changed.

Examples:
  iconkit sources ion:home
  iconkit diff edit
  iconkit sources hero:pencil --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runSources(cmd.OutOrStdout(), a, args[0], sourcesJSON)
	},
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(w io.Writer, a *app.App, ref string, asJSON bool) error {
	sources, err := a.Registry.Sources(ref, "")
	if err != nil {
		return err
	}
	resolved, err := a.Registry.Resolve(ref, "")
	if err != nil {
		return err
	}

	dtos := presentation.FromSources(sources)
	f := presentation.NewFormatter(w)
	if asJSON {
		return f.FormatJSON(dtos)
	}
	return f.FormatSources(resolved, dtos)
}
