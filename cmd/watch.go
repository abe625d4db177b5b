package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/iconkit/internal/app"
	"github.com/zjrosen/iconkit/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch icon directories and report changed icons",
	Long: `Watch every directory in icon_dirs and print each batch of changed
icons as it is invalidated. Stops on Ctrl+C.

Examples:
  iconkit watch
  iconkit watch --debug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runWatch(cmd.Context(), cmd.OutOrStdout(), a)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatch blocks until ctx is done, printing one line per changed icon.
func runWatch(ctx context.Context, w io.Writer, a *app.App) error {
	if len(a.Config().IconDirs) == 0 {
		return errors.New("no icon_dirs configured to watch")
	}

	done, err := a.Watch(ctx, func(batch []watcher.Change) {
		for _, c := range batch {
			verb := "changed"
			if c.Removed {
				verb = "removed"
			}
			_, _ = fmt.Fprintf(w, "%s %s\n", verb, c.Key())
		}
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Watching %d icon directories (Ctrl+C to stop)\n", len(a.Config().IconDirs))
	<-done
	return nil
}
