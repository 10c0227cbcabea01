package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"navindex/internal/application"
	"navindex/internal/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild trees when other processes announce changes",
	Long: `Subscribe to the rebuild channel and reload a tree each time another
process announces a change. Requires redis_url (or $NAVINDEX_REDIS_URL).

Stops on interrupt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching %s as %s\n", a.Config.RebuildChannel, mutedColor(a.Origin))

		err := a.Watch(cmd.Context(), func(req domain.RebuildRequest, stats *domain.RebuildStats, err error) {
			tree := application.TreeName(req.Kind, req.Trashed)
			if err != nil {
				fmt.Fprintf(out, "%s %s: %v\n", errorColor("failed"), tree, err)
				return
			}
			fmt.Fprintf(out, "%s %s (%d nodes) for %s\n", successColor("rebuilt"), tree, stats.Nodes, mutedColor(req.Origin))
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
