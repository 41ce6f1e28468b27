package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/dbgateway/gateway/internal/app"
	"github.com/dbgateway/gateway/internal/httpapi"
)

const banner = `
 ____  ____   ____       _                       _
|  _ \| __ ) / ___| __ _| |_ _____      ____ _ _   _
| | | |  _ \| |  _ / _  | __/ _ \ \ /\ / / _  | | | |
| |_| | |_) | |_| | (_| | ||  __/\ V  V / (_| | |_| |
|____/|____/ \____|\__,_|\__\___| \_/\_/ \__,_|\__, |
                                                |___/
`

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the introspection HTTP API",
		Long: `Start the read-only introspection HTTP API: GET /sources, GET /sources/:id,
and GET /requests, plus /healthz and /readyz. Tool invocation happens over
MCP (see 'gateway mcp'); serve exposes the same Source Manager and Request
Store for dashboards and health checks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")

	return cmd
}

func runServe(host string, port int) error {
	fmt.Print(banner)
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	manager, registry, st, err := app.Bootstrap(context.Background(), bootstrapOptions(), logger)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	// RegisterAll is the only thing that populates Registry.ToolNames,
	// which /sources reports. serve never starts this MCP server; it
	// exists purely to drive that bookkeeping.
	registry.RegisterAll(newMCPServerInstance())

	srvCfg := httpapi.DefaultConfig()
	srvCfg.Host = host
	srvCfg.Port = port

	srv := httpapi.New(srvCfg, manager, registry, st, logger)

	fmt.Printf("→ Database Gateway %s (%s)\n", appVersion, runtime.Version())
	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ Sources:  http://%s:%d/sources\n", host, port)
	fmt.Printf("→ Requests: http://%s:%d/requests\n", host, port)
	fmt.Printf("→ Health:   http://%s:%d/healthz\n", host, port)
	fmt.Printf("→ Connected sources: %d\n", len(manager.SourceIDs()))
	fmt.Println()

	return srv.ListenAndServe()
}
