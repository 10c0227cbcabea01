package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"navindex/internal/application"
	"navindex/internal/application/commands"
	"navindex/internal/domain"
)

var treeCmd = &cobra.Command{
	Use:   "tree [root]",
	Short: "Display a navigation tree",
	Long: `Display the selected tree, or the subtree under one key.

Examples:
  navindex-cli tree
  navindex-cli tree --bin --kind media
  navindex-cli tree 3b1e... --depth 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetInt("depth")

		build := commands.NewBuildTreeCommand(GetApp().Registry, kindFlag, binFlag)
		build.Root = optionalArg(args, 0)
		build.MaxDepth = depth
		root, err := build.Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if root.IsLeaf() {
			fmt.Fprintln(out, mutedColor(fmt.Sprintf("The %s tree is empty", application.TreeName(root.Kind, root.Trashed))))
			return nil
		}
		for _, child := range root.Children {
			printTree(out, child, 0)
		}
		return nil
	},
}

func printTree(w io.Writer, node *domain.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	key := keyColor(node.Key.String())
	if node.Level == 1 {
		key = rootColor(node.Key.String())
	}
	fmt.Fprintf(w, "%s%s %s\n", indent, key, mutedColor(fmt.Sprintf("L%d", node.Level)))

	for _, child := range node.Children {
		printTree(w, child, depth+1)
	}
}

func init() {
	treeCmd.Flags().IntP("depth", "d", 0, "maximum depth to print (0 for all)")
	rootCmd.AddCommand(treeCmd)
}
