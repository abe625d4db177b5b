package cmd

import (
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/zjrosen/iconkit/internal/app"
	"github.com/zjrosen/iconkit/internal/presentation"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list [namespace]",
	Short: "List available icons",
	Long: `List icon names. With a namespace, bare names are printed in loader
order; without one, every icon is printed as "namespace:name".

Examples:
  # Every icon in every namespace
  iconkit list

  # Names in one namespace
  iconkit list hero

  # Count icons with jq
  iconkit list ion --json | jq length`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		namespace := ""
		if len(args) == 1 {
			namespace = args[0]
		}
		return runList(cmd.OutOrStdout(), a, namespace, listJSON)
	},
}

var namespacesJSON bool

var namespacesCmd = &cobra.Command{
	Use:     "namespaces",
	Aliases: []string{"ns"},
	Short:   "List registered namespaces and their loaders",
	Long: `List every registered namespace with its icon count and loaders in
precedence order (the first loader that has an icon wins).

Examples:
  iconkit namespaces
  iconkit namespaces --json | jq '.[].namespace'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runNamespaces(cmd.OutOrStdout(), a, namespacesJSON)
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as a JSON array")
	namespacesCmd.Flags().BoolVar(&namespacesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd, namespacesCmd)
}

func runList(w io.Writer, a *app.App, namespace string, asJSON bool) error {
	names := slices.Collect(a.Registry.ListIcons(namespace))
	f := presentation.NewFormatter(w)
	if asJSON {
		if names == nil {
			names = []string{}
		}
		return f.FormatJSON(names)
	}
	return f.FormatLines(names)
}

// namespaceDTOs describes every namespace with its loaders and icon count.
func namespaceDTOs(a *app.App) []presentation.NamespaceDTO {
	keys := a.Registry.ListNamespaces()
	out := make([]presentation.NamespaceDTO, 0, len(keys))
	for _, ns := range keys {
		count := 0
		for range a.Registry.ListIcons(ns) {
			count++
		}
		loaders := a.Registry.Loaders(ns)
		if loaders == nil {
			loaders = []string{}
		}
		out = append(out, presentation.NamespaceDTO{
			Namespace: ns,
			Loaders:   loaders,
			Icons:     count,
		})
	}
	return out
}

func runNamespaces(w io.Writer, a *app.App, asJSON bool) error {
	dtos := namespaceDTOs(a)
	f := presentation.NewFormatter(w)
	if asJSON {
		return f.FormatJSON(dtos)
	}
	return f.FormatNamespaces(dtos)
}
