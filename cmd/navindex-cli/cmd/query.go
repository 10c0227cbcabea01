package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"navindex/internal/application/commands"
)

// queryCommand builds one subcommand per structural relation
func queryCommand(relation commands.Relation, short string, orSelf commands.Relation) *cobra.Command {
	var (
		contentType string
		includeSelf bool
	)

	use := string(relation) + " <key>"
	args := cobra.ExactArgs(1)
	if relation == commands.RelationRoots {
		use = string(relation)
		args = cobra.NoArgs
	}

	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			rel := relation
			if includeSelf {
				rel = orSelf
			}
			key := ""
			if len(args) > 0 {
				key = args[0]
			}

			q := commands.NewQueryCommand(GetApp().Registry, kindFlag, string(rel), key, binFlag)
			q.ContentType = contentType
			result, err := q.Execute(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case rel == commands.RelationLevel:
				fmt.Fprintln(out, result.Level)
				return nil
			case rel == commands.RelationParent && len(result.Keys) == 0:
				fmt.Fprintln(out, mutedColor("-"))
				return nil
			}
			printKeys(out, result.Keys)
			return nil
		},
	}

	if orSelf != "" {
		c.Flags().BoolVar(&includeSelf, "or-self", false, "include the node itself")
	}
	if relation != commands.RelationParent && relation != commands.RelationLevel {
		c.Flags().StringVarP(&contentType, "type", "t", "", "only keys of this content type")
	}
	return c
}

func init() {
	rootCmd.AddCommand(
		queryCommand(commands.RelationParent, "Print the parent key (- for a root)", ""),
		queryCommand(commands.RelationChildren, "List direct children in order", ""),
		queryCommand(commands.RelationDescendants, "List the subtree in depth-first order", commands.RelationDescendantsOrSelf),
		queryCommand(commands.RelationAncestors, "List ancestors from the parent up to the root", commands.RelationAncestorsOrSelf),
		queryCommand(commands.RelationSiblings, "List the other children of the same parent", ""),
		queryCommand(commands.RelationRoots, "List top level nodes", ""),
		queryCommand(commands.RelationLevel, "Print the depth of a node (roots are level 1)", ""),
	)
}
