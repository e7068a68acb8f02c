package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/radexhq/radex/internal/mcp"
)

var mcpUser string

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve the knowledge base over MCP on stdio",
	Long: `Start a Model Context Protocol server on stdio. All tool calls run as
the user given with --user; folder permissions apply to every query.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		a, cleanup, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		user, err := resolveUser(ctx, a, mcpUser)
		if err != nil {
			return err
		}

		server, err := mcp.NewServer(mcp.Config{
			Name:    "radex",
			Version: AppVersion,
			User:    user,
		}, a.Engine, a.Logger)
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}

		a.Logger.Info("MCP server ready", "transport", "stdio")
		if err := server.Run(ctx, &sdk.StdioTransport{}); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveMCPCmd.Flags().StringVar(&mcpUser, "user", "", "username the server acts as (required)")
	_ = serveMCPCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(serveMCPCmd)
}
