package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/airframe/internal/config"
)

func newInitConfigCmd(_ *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a commented default config file",
		Long: `Write the default configuration with comments, to .airframe/config.yaml
unless a path is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := localConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if used := a.v.ConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", used)
			}
			return config.Encode(cmd.OutOrStdout(), a.cfg)
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one key in the config file",
		Long: `Set a dotted key, such as tree.parent_policy, in the config file. Comments
in the file are kept. The result is validated before it is written.

Example:
  airframe config set tree.parent_policy strict`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.v.ConfigFileUsed()
			if path == "" {
				path = localConfigPath
			}
			a.v.Set(args[0], args[1])
			if _, err := config.Load(a.v); err != nil {
				return err
			}
			if err := config.SetValue(path, args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "set %s = %s in %s\n", args[0], args[1], path)
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}
