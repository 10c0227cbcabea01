package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"navindex/internal/application/commands"
)

var searchCmd = &cobra.Command{
	Use:   "search <fragment>",
	Short: "Find keys by a fragment",
	Long: `Find nodes whose key matches a fragment, for when only part of a UUID is at hand.

Results are ranked using fuzzy matching.

Examples:
  navindex-cli search 3b1e
  navindex-cli search --bin 9c4d`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		search := commands.NewSearchCommand(GetApp().Registry, kindFlag, args[0], binFlag)
		search.Limit = limit
		results, err := search.Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No results found")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(out, "%s %s\n", keyColor(r.Key.String()), mutedColor(fmt.Sprintf("L%d", r.Level)))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntP("limit", "n", 20, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
