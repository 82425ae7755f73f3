package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/airframe/internal/presentation"
)

func newTreeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the positioning tree",
		Long: `Print the positioning tree of the model document.

Components whose parent is missing, is not positioned, or would close a
cycle are drawn as roots with the error. With --policy strict the command
fails instead.

Examples:
  airframe tree -f models/demo.yaml
  airframe tree -f models/demo.yaml --json | jq '.[] | select(.error)'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, _, _, err := a.load(cmd)
			if err != nil {
				return err
			}
			if a.asJSON {
				return presentation.WriteJSON(cmd.OutOrStdout(), presentation.DescribeAll(m))
			}
			out, err := presentation.RenderTree(m)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&a.asJSON, "json", false, "print every component as JSON")
	return cmd
}
