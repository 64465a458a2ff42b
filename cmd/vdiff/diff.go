package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/fixture"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/vdom"
	"github.com/vango-dev/reconcile/pkg/vtest"
)

func diffCmd(g *globals) *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Show how one tree is reconciled into another",
		Long: `Mount OLD into an empty document, reconcile it to NEW and print
every child-list command the diff produced followed by the host calls
that applied it. Use - for a file to read it from stdin.

Examples:
  vdiff diff old.yaml new.yaml
  vdiff diff --html=false old.json new.json`,
		Args: fileArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			return runDiff(cmd.Context(), cmd.OutOrStdout(), g, cfg, args[0], args[1], html)
		},
	}

	cmd.Flags().BoolVar(&html, "html", true, "Print the document before and after")

	return cmd
}

func runDiff(ctx context.Context, w io.Writer, g *globals, cfg *config.Config, oldPath, newPath string, html bool) error {
	logger := cfg.NewLogger(os.Stderr)

	old, err := readFixture(oldPath)
	if err != nil {
		return err
	}
	new, err := readFixture(newPath)
	if err != nil {
		return err
	}

	doc := htmldom.New()
	if _, err := patch.New(doc, patch.WithLogger(logger)).Mount(ctx, old, doc.Root()); err != nil {
		return err
	}
	before := doc.String()

	rec := vtest.NewRecorder(doc)
	var commands []vdom.Command
	p := patch.New(rec,
		patch.WithLogger(logger),
		patch.WithName(cfg.Name),
		patch.WithCommandHook(func(c vdom.Command) {
			commands = append(commands, c)
		}),
	)
	_, passErr := p.Reconcile(ctx, old, new, doc.Root(), nil)

	g.heading(w, fmt.Sprintf("Commands (%d)", len(commands)))
	for _, c := range commands {
		info(w, "%s", g.paintCommand(c))
	}
	calls := rec.Strings()
	g.heading(w, fmt.Sprintf("Host calls (%d)", len(calls)))
	for _, c := range calls {
		info(w, "%s", c)
	}
	if html {
		g.heading(w, "Before")
		info(w, "%s", before)
		g.heading(w, "After")
		info(w, "%s", doc.String())
	}
	return passErr
}

func (g *globals) paintCommand(c vdom.Command) string {
	switch c.Op {
	case vdom.CmdAppendEl, vdom.CmdAppendText, vdom.CmdInsertEl, vdom.CmdInsertText:
		return g.paint("\033[32m", c.String())
	case vdom.CmdRemoveEl, vdom.CmdRemoveText:
		return g.paint("\033[31m", c.String())
	case vdom.CmdReplaceElByEl, vdom.CmdReplaceElByText, vdom.CmdReplaceTextByEl:
		return g.paint("\033[33m", c.String())
	default:
		return c.String()
	}
}

// readFixture decodes a fixture file, or stdin for "-".
func readFixture(path string, opts ...fixture.Option) (*vdom.VNode, error) {
	if path != "-" {
		return fixture.ParseFile(path, opts...)
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.New("E140").Wrap(err)
	}
	return fixture.Parse(data, append([]fixture.Option{fixture.WithFile("<stdin>")}, opts...)...)
}

// fileArgs checks the number of positional fixture paths.
func fileArgs(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || len(args) > max {
			want := fmt.Sprintf("%d", min)
			if max != min {
				want = fmt.Sprintf("%d to %d", min, max)
			}
			return errors.New("E141").
				WithDetail(fmt.Sprintf("%s takes %s fixture files, got %d", cmd.Name(), want, len(args))).
				WithSuggestion("Run 'vdiff " + cmd.Name() + " --help' for usage")
		}
		return nil
	}
}
