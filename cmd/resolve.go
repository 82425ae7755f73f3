package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/airframe/internal/presentation"
)

func newResolveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <uid>",
		Short: "Describe one component",
		Long: `Resolve a UID and describe the component: its kind, declared and linked
parent, children, effective symmetry, world origin, and the components that
reference it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, _, err := a.load(cmd)
			if err != nil {
				return err
			}
			dto, err := presentation.Describe(m, args[0])
			if err != nil {
				return err
			}
			if a.asJSON {
				return presentation.WriteJSON(cmd.OutOrStdout(), dto)
			}
			return presentation.WriteText(cmd.OutOrStdout(), dto)
		},
	}
	cmd.Flags().BoolVar(&a.asJSON, "json", false, "print as JSON")
	return cmd
}
