package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "navindex/internal/adapters/mcp"
	"navindex/internal/app"
	"navindex/internal/config"
)

func main() {
	configFlag := flag.String("config", "", "config file (default $"+config.EnvConfig+")")
	dbFlag := flag.String("db", "", "path to the SQLite store (overrides config)")
	watchFlag := flag.Bool("watch", true, "rebuild trees when other processes announce changes")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("navindex-mcp: %v", err)
	}
	if *dbFlag != "" {
		cfg.DatabasePath = config.ExpandPath(*dbFlag)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(cfg)
	if err != nil {
		log.Fatalf("navindex-mcp: %v", err)
	}
	defer a.Close()

	if err := a.Bootstrap(ctx); err != nil {
		log.Fatalf("navindex-mcp: %v", err)
	}

	if *watchFlag && a.Notifier != nil {
		go func() {
			if err := a.Watch(ctx, nil); err != nil && ctx.Err() == nil {
				a.Logger.Error("watch stopped", "error", err)
			}
		}()
	}

	mcpServer := server.NewMCPServer(
		"navindex-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, a.Registry)
	mcpadapter.RegisterWriteTools(mcpServer, a.Env())

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Printf("navindex-mcp: %v", err)
	}
}
