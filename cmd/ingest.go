package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	ingestUser   string
	ingestFolder string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Upload and index documents into a folder",
	Long: `Upload one or more files into a folder. Text documents are chunked and
embedded for semantic search; tabular files (.csv, .xlsx) are stored for
on-demand computation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, cleanup, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		user, err := resolveUser(ctx, a, ingestUser)
		if err != nil {
			return err
		}

		folderID, err := uuid.Parse(ingestFolder)
		if err != nil {
			return fmt.Errorf("parsing --folder: %w", err)
		}

		for _, path := range args {
			data, err := os.ReadFile(path) // #nosec G304 -- user-supplied path is the point
			if err != nil {
				return fmt.Errorf("reading %q: %w", path, err)
			}

			result, err := a.Engine.Ingest(ctx, user, folderID, filepath.Base(path), data)
			if err != nil {
				return fmt.Errorf("ingesting %q: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %s (%s, %d chunks)\n",
				result.Document.Filename, result.Document.ContentType, result.Chunks)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestUser, "user", "", "username to ingest as (required)")
	ingestCmd.Flags().StringVar(&ingestFolder, "folder", "", "target folder ID (required)")
	_ = ingestCmd.MarkFlagRequired("folder")
	rootCmd.AddCommand(ingestCmd)
}
