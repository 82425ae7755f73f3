package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/airframe/internal/document"
	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/presentation"
)

func newRenameCmd(a *app) *cobra.Command {
	var (
		showDiff bool
		write    bool
		unique   bool
	)
	cmd := &cobra.Command{
		Use:   "rename <old-uid> <new-uid>",
		Short: "Rename a component and every reference to it",
		Long: `Rename a component. Parents, profiles, segment sections and duct targets
naming the old UID are rewritten.

By default the renamed document is printed. --write saves it over the
input file; --diff shows how the positioning tree changed. Components that
failed to build are written back unchanged apart from the rename. With
--unique a taken new UID gets a numeric suffix (wing becomes wing_1).

Examples:
  airframe rename -f models/demo.yaml fuselage fuselage_main --diff
  airframe rename -f models/demo.yaml naca naca2412 --write`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, doc, path, err := a.load(cmd)
			if err != nil {
				return err
			}
			before, _ := presentation.RenderTree(m)

			oldID, newID := args[0], args[1]
			if unique && oldID != newID {
				newID = m.Registry().MakeUnique(newID)
			}
			if err := m.Rename(oldID, newID); err != nil {
				return fmt.Errorf("renaming %q: %w", oldID, err)
			}
			rewritten := doc.Rename(oldID, newID)
			log.Info(log.CatRegistry, "renamed", "from", oldID, "to", newID, "document", path, "rewritten", rewritten)

			out := cmd.OutOrStdout()
			if showDiff {
				after, _ := presentation.RenderTree(m)
				lines := presentation.LineDiff(before, after)
				if !presentation.Changed(lines) {
					_, _ = fmt.Fprintln(out, "positioning tree unchanged")
				} else {
					_, _ = fmt.Fprint(out, presentation.RenderDiff(lines))
				}
			}

			exported := document.Export(m, doc)
			if write {
				if err := document.Save(path, exported); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "renamed %s to %s in %s\n", oldID, newID, path)
				return nil
			}
			if !showDiff {
				return document.Encode(out, exported)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showDiff, "diff", false, "show the positioning tree diff")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "save the renamed document over the input")
	cmd.Flags().BoolVar(&unique, "unique", false, "add a numeric suffix when the new UID is taken")
	return cmd
}
