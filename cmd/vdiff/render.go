package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/patch"
)

func renderCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Print a fixture tree as HTML",
		Long: `Mount the tree in FILE into an empty document and print the
resulting HTML. Use - to read the fixture from stdin.`,
		Args: fileArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			tree, err := readFixture(args[0])
			if err != nil {
				return err
			}

			doc := htmldom.New()
			p := patch.New(doc, patch.WithLogger(cfg.NewLogger(os.Stderr)), patch.WithName(cfg.Name))
			if _, err := p.Mount(cmd.Context(), tree, doc.Root()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.String())
			return nil
		},
	}
	return cmd
}
