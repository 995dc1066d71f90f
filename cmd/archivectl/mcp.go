package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	archivemcp "github.com/matheus3301/msgarchive/internal/mcp"
	"github.com/spf13/cobra"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server integration",
	}
	cmd.AddCommand(mcpServeCmd())
	return cmd
}

func mcpServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start an MCP stdio server exposing the archive as tools",
		Long: `Starts an MCP server on stdin/stdout. Requests are answered by the
archived daemon, so only the daemon needs access to the archive.

Example client configuration:
  {
    "mcpServers": {
      "messages": {
        "type": "stdio",
        "command": "archivectl",
        "args": ["mcp", "serve"]
      }
    }
  }`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPServe()
		},
	}
}

func runMCPServe() error {
	s, err := connect()
	if err != nil {
		return err
	}
	defer func() { _ = s.client.Close() }()

	// Fail fast when the daemon is down rather than on the first tool call.
	probeCtx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	_, err = s.client.Status(probeCtx)
	cancel()
	if err := describe(s.profile.Name, err); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := archivemcp.NewServer(s.client, archivemcp.WithVersion(Version))
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
