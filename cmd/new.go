package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/paths"
	"github.com/zjrosen/airframe/internal/templates"
)

func newNewCmd(a *app) *cobra.Command {
	var (
		template string
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "new [path]",
		Short: "Start a model document from a template",
		Long: fmt.Sprintf(`Write a starter model document. Without a path the document from the
config (or ./airframe.yaml) is used; a directory gets an airframe.yaml.

Templates: %s`, strings.Join(templates.Names(), ", ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := a.cfg.Document
			if len(args) == 1 {
				target = args[0]
			}
			path := paths.ResolveDocument(target)

			data, err := templates.Model(template)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return fmt.Errorf("creating document directory: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // model documents are not secret
				return fmt.Errorf("writing document: %w", err)
			}
			log.Info(log.CatDocument, "created document", "path", path, "template", template)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s from template %s\n", path, template)
			return nil
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", "demo", "template to start from")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing document")
	return cmd
}
