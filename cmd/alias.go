package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/zjrosen/iconkit/internal/config"
	"github.com/zjrosen/iconkit/internal/icon"
)

var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage icon aliases",
	Long: `Aliases give short names to frequently used icons ("edit" -> "hero:pencil").
They are stored under aliases: in the config file.`,
}

var aliasAddCmd = &cobra.Command{
	Use:   "add <alias> <target>",
	Short: "Add or replace an alias in the config file",
	Long: `Add or replace an alias. The aliases section of the config file is
rewritten in place; comments elsewhere in the file are preserved.

Examples:
  iconkit alias add edit hero:pencil
  iconkit alias add delete hero:trash -c ./iconkit.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAliasAdd(cmd.OutOrStdout(), configPath(), args[0], args[1])
	},
}

var aliasRemoveCmd = &cobra.Command{
	Use:     "remove <alias>",
	Aliases: []string{"rm"},
	Short:   "Remove an alias from the config file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAliasRemove(cmd.OutOrStdout(), configPath(), args[0])
	},
}

var aliasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured aliases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return cfgErr
		}
		return runAliasList(cmd.OutOrStdout(), cfg.Aliases)
	},
}

func init() {
	aliasCmd.AddCommand(aliasAddCmd, aliasRemoveCmd, aliasListCmd)
	rootCmd.AddCommand(aliasCmd)
}

func runAliasAdd(w io.Writer, path, alias, target string) error {
	if alias == "" {
		return errors.New("alias must not be empty")
	}
	if _, name := icon.ParseReference(target, ""); name == "" {
		return fmt.Errorf("invalid alias target %q: missing icon name", target)
	}
	if _, err := config.AddAlias(path, alias, target); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s -> %s (%s)\n", alias, target, path)
	return err
}

func runAliasRemove(w io.Writer, path, alias string) error {
	if _, err := config.RemoveAlias(path, alias); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Removed %s (%s)\n", alias, path)
	return err
}

func runAliasList(w io.Writer, aliases map[string]string) error {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s -> %s\n", k, aliases[k]); err != nil {
			return err
		}
	}
	return nil
}
