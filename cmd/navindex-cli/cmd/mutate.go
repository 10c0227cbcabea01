package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"navindex/internal/application/commands"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a node to the live tree",
	Long: `Add a node to the live tree of the selected kind.

Without --parent the node becomes a root. Without --key a new key is generated.

Examples:
  navindex-cli add --type 7f0c... --parent 3b1e...
  navindex-cli add --kind media --key 0d2a...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		contentType, _ := cmd.Flags().GetString("type")
		parent, _ := cmd.Flags().GetString("parent")

		result, err := commands.NewAddCommand(GetApp().Env(), kindFlag, key, contentType, parent).Execute(cmd.Context())
		if err != nil {
			return err
		}
		printMutation(cmd.OutOrStdout(), result)
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <key> [parent]",
	Short: "Move a node and its subtree",
	Long: `Move a node, with its whole subtree, under a new parent in the live tree.

Omit the parent (or pass -) to move the node to the top level. A node cannot be
moved under itself or under one of its descendants.

Examples:
  navindex-cli move 3b1e... 9c4d...   # Move under 9c4d...
  navindex-cli move 3b1e...           # Make it a root`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewMoveCommand(GetApp().Env(), kindFlag, args[0], optionalArg(args, 1)).Execute(cmd.Context())
		if err != nil {
			return err
		}
		printMutation(cmd.OutOrStdout(), result)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Permanently remove a node and its descendants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewRemoveCommand(GetApp().Env(), kindFlag, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		printMutation(cmd.OutOrStdout(), result)
		return nil
	},
}

var trashCmd = &cobra.Command{
	Use:   "trash <key>",
	Short: "Move a node and its subtree into the recycle bin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewTrashCommand(GetApp().Env(), kindFlag, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		printMutation(cmd.OutOrStdout(), result)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <key> [parent]",
	Short: "Restore a node and its subtree from the recycle bin",
	Long: `Restore a trashed node, with its subtree, into the live tree.

Omit the parent to restore at the top level. The restore is refused when any key
of the subtree already exists in the live tree.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewRestoreCommand(GetApp().Env(), kindFlag, args[0], optionalArg(args, 1)).Execute(cmd.Context())
		if err != nil {
			return err
		}
		printMutation(cmd.OutOrStdout(), result)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge <key>",
	Short: "Permanently delete a node and its subtree from the recycle bin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewPurgeCommand(GetApp().Env(), kindFlag, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		printMutation(cmd.OutOrStdout(), result)
		return nil
	},
}

var sortCmd = &cobra.Command{
	Use:   "sort <key> <order>",
	Short: "Set the sort order of a live node",
	Long: `Set the sort order of a node in the live tree.

Roots are listed by sort order; children move before the first sibling with a
greater order.

Examples:
  navindex-cli sort 3b1e... 0   # First among its siblings`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid sort order %q: %w", args[1], err)
		}
		result, err := commands.NewSortCommand(GetApp().Env(), kindFlag, args[0], order).Execute(cmd.Context())
		if err != nil {
			return err
		}
		printMutation(cmd.OutOrStdout(), result)
		return nil
	},
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func init() {
	addCmd.Flags().String("key", "", "key of the new node (generated when empty)")
	addCmd.Flags().StringP("type", "t", "", "content type key")
	addCmd.Flags().StringP("parent", "p", "", "parent key (top level when empty)")

	rootCmd.AddCommand(addCmd, moveCmd, sortCmd, removeCmd, trashCmd, restoreCmd, purgeCmd)
}
