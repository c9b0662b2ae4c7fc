package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/mini/internal/config"
	"github.com/vango-dev/mini/internal/demo"
	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo counter over a websocket",
		Long: `Serve the demo counter to browsers. Each connection gets its own
engine; mutations stream to a small JavaScript client over a websocket.

Endpoints:
  /         page with the client
  /ws       websocket
  /metrics  Prometheus metrics
  /healthz  health check

Examples:
  mini serve
  mini serve --port=9000
  MINI_PORT=9000 mini serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(flags.configDir)
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from mini.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from mini.json)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	sc := cfg.ServerConfig()
	srv := server.New(func() *element.Element {
		return demo.New(nil).App()
	}, sc)

	success(cmd.OutOrStdout(), "serving on http://%s", displayAddress(sc.Address))
	return srv.Run(ctx)
}

// displayAddress turns ":8080" into "localhost:8080".
func displayAddress(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
