package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"navindex/internal/application"
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// BuildTreeCommand materializes a tree, or one subtree of it, for display
type BuildTreeCommand struct {
	registry ports.NavigationRegistry
	Kind     string
	Bin      bool
	Root     string // Optional: only this node's subtree
	MaxDepth int    // Zero means unlimited
}

// NewBuildTreeCommand creates a new BuildTreeCommand
func NewBuildTreeCommand(registry ports.NavigationRegistry, kind string, bin bool) *BuildTreeCommand {
	return &BuildTreeCommand{
		registry: registry,
		Kind:     kind,
		Bin:      bin,
	}
}

// Execute builds the tree. The returned node is a synthetic root (uuid.Nil
// key) whose children are the tree's roots, or the requested node.
func (c *BuildTreeCommand) Execute(ctx context.Context) (*domain.TreeNode, error) {
	kind, err := application.ParseKind(c.Kind)
	if err != nil {
		return nil, err
	}
	root, err := application.ParseOptionalKey("key", c.Root)
	if err != nil {
		return nil, err
	}
	svc, ok := c.registry.Service(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", application.ErrUnknownKind, kind)
	}
	tree := svc.Tree(c.Bin)

	top := &domain.TreeNode{Kind: kind, Trashed: c.Bin, IsExpanded: true}

	var starts []uuid.UUID
	level := 1
	if root == uuid.Nil {
		starts, _ = tree.RootKeys()
	} else {
		if level, ok = tree.Level(root); !ok {
			return nil, notFound(root, kind, c.Bin)
		}
		starts = []uuid.UUID{root}
	}

	for _, k := range starts {
		top.Children = append(top.Children, c.build(tree, k, top, level, 1))
	}
	return top, nil
}

func (c *BuildTreeCommand) build(tree ports.NavigationQueries, key uuid.UUID, parent *domain.TreeNode, level, depth int) *domain.TreeNode {
	n := &domain.TreeNode{
		Key:     key,
		Kind:    parent.Kind,
		Trashed: parent.Trashed,
		Level:   level,
		Parent:  parent,
	}
	if c.MaxDepth > 0 && depth >= c.MaxDepth {
		return n
	}
	children, _ := tree.ChildrenKeys(key)
	for _, child := range children {
		n.Children = append(n.Children, c.build(tree, child, n, level+1, depth+1))
	}
	return n
}
