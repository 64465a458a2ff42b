package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	noColor    bool
	color      bool
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "vdiff",
		Short: "Diff, render and preview virtual DOM trees",
		Long: `vdiff drives the reconciler from the command line.

Trees are read from JSON or YAML fixture files:

  tag: ul
  children:
    - {tag: li, key: a, children: [first]}
    - {tag: li, key: b, children: [second]}

Examples:
  vdiff diff old.yaml new.yaml
  vdiff render page.yaml
  vdiff serve page.yaml --port 8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.color = !g.noColor && os.Getenv("NO_COLOR") == "" && isTerminal(os.Stdout)
			if !g.color {
				errors.DisableColors()
			}
		},
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to reconcile.json (default: built-in settings)")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		diffCmd(g),
		renderCmd(g),
		serveCmd(g),
		versionCmd(),
	)
	return root
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (g *globals) loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(g.configPath)
}

func (g *globals) paint(code, s string) string {
	if !g.color {
		return s
	}
	return code + s + "\033[0m"
}

// heading prints a bold section title.
func (g *globals) heading(w io.Writer, title string) {
	fmt.Fprintln(w, g.paint("\033[1m", title))
}

// success prints a success message.
func (g *globals) success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", g.paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an indented info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
