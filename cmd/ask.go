package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/radexhq/radex/internal/reformulate"
)

var askUser string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over your accessible documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, cleanup, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		user, err := resolveUser(ctx, a, askUser)
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		answer, err := a.Engine.Ask(ctx, user, []reformulate.Turn{
			{Role: reformulate.RoleUser, Content: question},
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, answer.Text)

		if len(answer.Sources) > 0 {
			fmt.Fprintln(out, "\nSources:")
			for _, src := range answer.Sources {
				fmt.Fprintf(out, "  - %s (%s, similarity %.2f)\n",
					src.Filename, src.FolderName, src.Similarity)
			}
		}
		if len(answer.SuggestedQueries) > 0 {
			fmt.Fprintln(out, "\nYou could also ask:")
			for _, q := range answer.SuggestedQueries {
				fmt.Fprintf(out, "  - %s\n", q)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askUser, "user", "", "username to ask as (required)")
	rootCmd.AddCommand(askCmd)
}
