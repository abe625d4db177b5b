package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/iconkit/internal/app"
	"github.com/zjrosen/iconkit/internal/presentation"
)

type collectFlags struct {
	output      string
	central     bool
	dryRun      bool
	concurrency int
	extensions  []string
	json        bool
}

var collectOpts collectFlags

var collectCmd = &cobra.Command{
	Use:   "collect [dir...]",
	Short: "Copy the icons your templates use into static directories",
	Long: `Scan templates for icon references, resolve each one and write it to
<root>/<namespace>/<name>.svg. Files that already exist are left untouched,
so hand-edited icons survive repeated runs.

By default every template directory gets its own static/icons folder. With
--central all icons go to a single output directory (collect.output_dir in
the config, or --output).

Examples:
  # Per-directory collection of the configured scan dirs
  iconkit collect

  # Everything into one folder
  iconkit collect templates emails --central --output static/icons

  # See what would be written
  iconkit collect --central --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runCollect(cmd.Context(), cmd.OutOrStdout(), a, args, collectOpts)
	},
}

func init() {
	f := collectCmd.Flags()
	f.StringVarP(&collectOpts.output, "output", "o", "", "output directory for --central")
	f.BoolVar(&collectOpts.central, "central", false, "write every icon to one output directory")
	f.BoolVarP(&collectOpts.dryRun, "dry-run", "n", false, "report without writing files")
	f.IntVarP(&collectOpts.concurrency, "concurrency", "j", app.DefaultCollectConcurrency, "parallel resolve/write jobs")
	f.StringArrayVar(&collectOpts.extensions, "ext", nil, "file extension to scan (repeatable)")
	f.BoolVar(&collectOpts.json, "json", false, "print the result as JSON")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(ctx context.Context, w io.Writer, a *app.App, dirs []string, opts collectFlags) error {
	result, err := a.Collect(ctx, app.CollectOptions{
		Dirs:        dirs,
		Extensions:  opts.extensions,
		OutputDir:   opts.output,
		Central:     opts.central,
		DryRun:      opts.dryRun,
		Concurrency: opts.concurrency,
	})
	if err != nil {
		return err
	}

	dto := presentation.CollectDTO{
		DryRun:  opts.dryRun,
		Written: nonNil(result.Written),
		Skipped: nonNil(result.Skipped),
		Missing: nonNil(result.Missing),
	}
	f := presentation.NewFormatter(w)
	if opts.json {
		return f.FormatJSON(dto)
	}
	return f.FormatCollect(dto)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
