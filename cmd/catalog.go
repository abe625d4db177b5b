package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/iconkit/internal/app"
	"github.com/zjrosen/iconkit/internal/log"
	"github.com/zjrosen/iconkit/internal/presentation"
)

const defaultCatalogSample = 12

var (
	catalogRaw    bool
	catalogWidth  int
	catalogSample int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show a catalog of namespaces, packs and sample icons",
	Long: `Print a catalog of every namespace: icon counts, pack metadata and a
sample of icon names. Output is rendered markdown; use --raw for the
markdown source (handy for docs).

Examples:
  iconkit catalog
  iconkit catalog --raw > ICONS.md
  iconkit catalog --sample 30 --width 120`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runCatalog(cmd.OutOrStdout(), a, catalogSample, catalogWidth, catalogRaw)
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogRaw, "raw", false, "print markdown without rendering")
	catalogCmd.Flags().IntVarP(&catalogWidth, "width", "w", 100, "word wrap width")
	catalogCmd.Flags().IntVar(&catalogSample, "sample", defaultCatalogSample, "icon names shown per namespace")
	rootCmd.AddCommand(catalogCmd)
}

// catalogEntries pairs every namespace with the active pack serving it, if
// any, and the first sample names it lists.
func catalogEntries(a *app.App, sample int) []presentation.CatalogEntry {
	byNamespace := make(map[string]*presentation.PackDTO)
	if a.Config().AutoDiscover {
		for _, id := range a.Config().Packs {
			p, err := a.Packs().Get(id)
			if err != nil {
				log.Debug(log.CatPack, "Pack unavailable for catalog", "pack", id, "error", err)
				continue
			}
			if _, ok := byNamespace[p.Namespace()]; ok {
				continue
			}
			dto := presentation.FromPack(p)
			byNamespace[p.Namespace()] = &dto
		}
	}

	namespaces := namespaceDTOs(a)
	entries := make([]presentation.CatalogEntry, 0, len(namespaces))
	for _, ns := range namespaces {
		var names []string
		for name := range a.Registry.ListIcons(ns.Namespace) {
			if len(names) >= sample {
				break
			}
			names = append(names, name)
		}
		entries = append(entries, presentation.CatalogEntry{
			Namespace: ns,
			Pack:      byNamespace[ns.Namespace],
			Sample:    names,
		})
	}
	return entries
}

func runCatalog(w io.Writer, a *app.App, sample, width int, raw bool) error {
	md := presentation.CatalogMarkdown(catalogEntries(a, sample))
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}
	out, err := presentation.RenderMarkdown(md, width)
	if err != nil {
		return fmt.Errorf("rendering catalog: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
