package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/iconkit/internal/config"
	"github.com/zjrosen/iconkit/internal/presentation"
	"github.com/zjrosen/iconkit/internal/scanner"
)

type scanFlags struct {
	extensions []string
	json       bool
	unique     bool
}

var scanOpts scanFlags

var scanCmd = &cobra.Command{
	Use:   "scan [dir...]",
	Short: "Find icon references in templates",
	Long: `Scan template directories for icon references such as
{% icon "hero:pencil" %}, {{ icon "home" }} and {{ "edit" | icon }}.

Without arguments the directories from scan.dirs in the config are used.
References are grouped by namespace; bare names count toward the default
namespace.

Examples:
  # Grouped summary of the configured directories
  iconkit scan

  # Every occurrence with file and line
  iconkit scan templates --json

  # One reference per line, deduplicated
  iconkit scan templates emails --unique --ext .html --ext .txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return cfgErr
		}
		return runScan(cmd.Context(), cmd.OutOrStdout(), cfg, args, scanOpts)
	},
}

func init() {
	scanCmd.Flags().StringArrayVar(&scanOpts.extensions, "ext", nil, "file extension to scan (repeatable)")
	scanCmd.Flags().BoolVar(&scanOpts.json, "json", false, "print every occurrence as JSON")
	scanCmd.Flags().BoolVar(&scanOpts.unique, "unique", false, "print each distinct reference once")
	rootCmd.AddCommand(scanCmd)
}

func runScan(ctx context.Context, w io.Writer, c config.Config, dirs []string, opts scanFlags) error {
	if len(dirs) == 0 {
		dirs = c.Scan.Dirs
	}
	exts := opts.extensions
	if len(exts) == 0 {
		exts = c.Scan.Extensions
	}

	refs, err := scanner.ScanDirectories(ctx, dirs, exts)
	if err != nil {
		return err
	}

	f := presentation.NewFormatter(w)
	switch {
	case opts.json:
		return f.FormatJSON(presentation.FromReferences(refs))
	case opts.unique:
		return f.FormatLines(scanner.Unique(refs))
	default:
		return f.FormatGrouped(scanner.GroupByNamespace(scanner.Unique(refs), c.DefaultNamespace))
	}
}
