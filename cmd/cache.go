package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/iconkit/internal/app"
	"github.com/zjrosen/iconkit/internal/presentation"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the icon caches",
	Long: `Inspect and maintain the LRU and the optional second tier.

The second tier only outlives a single command with the sqlite backend, so
purge and clear are mostly useful there.

Examples:
  iconkit cache stats --json
  iconkit cache purge
  iconkit cache clear`,
}

var cacheStatsJSON bool

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache counters and second-tier size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runCacheStats(cmd.Context(), cmd.OutOrStdout(), a, cacheStatsJSON)
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired second-tier entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runCachePurge(cmd.Context(), cmd.OutOrStdout(), a)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty every cache, including the second tier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runCacheClear(cmd.Context(), cmd.OutOrStdout(), a)
	},
}

func init() {
	cacheStatsCmd.Flags().BoolVar(&cacheStatsJSON, "json", false, "output as JSON")
	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(ctx context.Context, w io.Writer, a *app.App, asJSON bool) error {
	report, err := a.CacheReport(ctx)
	if err != nil {
		return err
	}
	f := presentation.NewFormatter(w)
	if asJSON {
		return f.FormatJSON(report)
	}

	s := report.Registry
	fields := []presentation.Field{
		{Key: "registry", Value: s.ID},
		{Key: "namespaces", Value: strconv.Itoa(s.Namespaces)},
		{Key: "aliases", Value: strconv.Itoa(s.Aliases)},
		{Key: "memoized", Value: strconv.Itoa(s.Memoized)},
		{Key: "lru", Value: fmt.Sprintf("%d/%d (hits %d, misses %d, evictions %d)",
			s.Cache.Size, s.Cache.Capacity, s.Cache.Hits, s.Cache.Misses, s.Cache.Evictions)},
	}
	tier := "disabled"
	if s.SecondTier {
		tier = report.Backend
		if report.Maintained {
			tier = fmt.Sprintf("%s, %d entries", report.Backend, report.TierItems)
		}
	}
	fields = append(fields, presentation.Field{Key: "second tier", Value: tier})
	return f.FormatFields(fields)
}

func runCachePurge(ctx context.Context, w io.Writer, a *app.App) error {
	if !a.Registry.Stats().SecondTier {
		_, err := fmt.Fprintln(w, "No second tier configured")
		return err
	}
	n, err := a.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Purged %d expired icons\n", n)
	return err
}

func runCacheClear(ctx context.Context, w io.Writer, a *app.App) error {
	if err := a.Registry.ClearCaches(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "Cleared icon caches")
	return err
}
