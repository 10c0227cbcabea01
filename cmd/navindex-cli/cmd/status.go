package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"navindex/internal/application"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare stored node counts with the loaded trees",
	Long: `Show, for each of the four navigation trees, how many nodes the store holds
and how many the in-memory tree loaded. A difference means records were skipped
during the rebuild (duplicate or missing keys).

With telemetry enabled (telemetry: true or NAVINDEX_TELEMETRY=1) the rebuilds
this process ran are listed as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		counts, err := a.Store.Stats(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", mutedColor("store:"), a.Store.Path())
		if a.Notifier != nil {
			fmt.Fprintf(out, "%s %s\n", mutedColor("broadcast:"), a.Config.RebuildChannel)
		}
		fmt.Fprintln(out)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TREE\tSTORED\tLOADED")
		for _, c := range counts {
			idx, ok := a.Registry.Lookup(c.Kind, c.Trashed)
			if !ok {
				continue
			}
			loaded := fmt.Sprint(idx.Len())
			if idx.Len() != c.Nodes {
				loaded = warnColor(loaded)
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", application.TreeName(c.Kind, c.Trashed), c.Nodes, loaded)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if a.Telemetry == nil {
			return nil
		}
		rebuilds, err := a.Telemetry.Rebuilds(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TREE\tREBUILDS\tFAILED\tTIME")
		for _, r := range rebuilds {
			kind, err := application.ParseKind(r.Kind)
			if err != nil {
				continue
			}
			failed := fmt.Sprint(r.Failures)
			if r.Failures > 0 {
				failed = warnColor(failed)
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", application.TreeName(kind, r.Trashed), r.Rebuilds, failed, r.Total.Round(time.Microsecond))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
