package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/airframe/internal/presentation"
)

func newShapesCmd(a *app) *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "Build and list every shape",
		Long: `Build the lofts and cut lofts of every component and list their bounds,
the ducts that cut them and their content fingerprints.

Shapes are cached by fingerprint (kernel.cache in the config), so shapes
with identical inputs are built once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, _, _, err := a.load(cmd)
			if err != nil {
				return err
			}
			shapes := presentation.Shapes(m)
			if a.asJSON {
				if err := presentation.WriteJSON(cmd.OutOrStdout(), shapes); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), presentation.RenderShapes(shapes))
			}
			if stats {
				hits, misses := a.geometryKernel().Stats()
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "kernel cache: %d hits, %d misses\n", hits, misses)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.asJSON, "json", false, "print as JSON")
	cmd.Flags().BoolVar(&stats, "stats", false, "print kernel cache statistics to stderr")
	return cmd
}
