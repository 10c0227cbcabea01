package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"navindex/internal/application"
	"navindex/internal/application/commands"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Reload navigation trees from the store",
	Long: `Reload the selected tree (or every tree with --all) from the store.

With --broadcast, other processes listening on the rebuild channel reload too.

Examples:
  navindex-cli rebuild --kind media --bin
  navindex-cli rebuild --all --broadcast`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		broadcast, _ := cmd.Flags().GetBool("broadcast")

		var rebuild *commands.RebuildCommand
		if all {
			rebuild = commands.NewRebuildAllCommand(GetApp().Env())
		} else {
			rebuild = commands.NewRebuildCommand(GetApp().Env(), kindFlag, binFlag)
		}
		rebuild.Broadcast = broadcast

		result, err := rebuild.Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, s := range result.Stats {
			line := fmt.Sprintf("%-14s %d nodes, %d roots", application.TreeName(s.Kind, s.Trashed), s.Nodes, s.Roots)
			if s.Orphans > 0 || s.Skipped > 0 {
				line += warnColor(fmt.Sprintf(" (%d orphans re-rooted, %d records skipped)", s.Orphans, s.Skipped))
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, successColor(result.Message))
		printWarnings(out, result.NotifyErrors)
		return nil
	},
}

func init() {
	rebuildCmd.Flags().BoolP("all", "a", false, "rebuild every tree of every kind")
	rebuildCmd.Flags().Bool("broadcast", false, "ask other processes to rebuild too")
	rootCmd.AddCommand(rebuildCmd)
}
