package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/fixture"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/server"
)

func serveCmd(g *globals) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve [FILE]",
		Short: "Start the live-preview server",
		Long: `Start the live-preview server. Clients connect to /ws and receive
mutation batches; POST a fixture to /render to push a new tree to every
client. FILE, if given, is the tree served before the first render.

Examples:
  vdiff serve
  vdiff serve page.yaml --port 8080
  curl --data-binary @next.yaml localhost:7070/render`,
		Args: fileArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := cfg.NewLogger(os.Stderr)

			opts := []server.Option{server.WithLogger(logger)}
			if len(args) == 1 {
				tree, err := readFixture(args[0], fixture.WithHandler(func(path, trigger string, ev dom.Event) {
					logger.Info("client event", "element", path, "trigger", trigger, "event", ev)
				}))
				if err != nil {
					return err
				}
				opts = append(opts, server.WithTree(tree))
			}
			srv := server.New(cfg, opts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			g.success(w, "Serving %s on http://%s", cfg.Name, cfg.Address())
			info(w, "stream:  ws://%s/ws", cfg.Address())
			info(w, "render:  POST http://%s/render", cfg.Address())
			if cfg.Metrics.Enabled {
				info(w, "metrics: http://%s%s", cfg.Address(), cfg.Metrics.Path)
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}
