// Package cmd implements the radex command-line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/radexhq/radex/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "radex",
	Short: "Radex - permission-scoped knowledge retrieval",
	Long: `Radex answers questions over your documents while honoring folder
permissions. Questions route automatically between deterministic tabular
computation and semantic retrieval with vector search.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initLogger builds the process logger. Logs go to stderr so stdout stays
// clean for command output and, in MCP mode, for JSON-RPC.
func initLogger() *slog.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	return log.NewWithWriter(os.Stderr, cfg)
}
