package domain

import (
	"slices"

	"github.com/google/uuid"
)

// TreeNode represents a node in a materialized navigation tree for display
type TreeNode struct {
	Key        uuid.UUID // uuid.Nil for the synthetic root
	Kind       ItemKind
	Trashed    bool
	Level      int
	Children   []*TreeNode
	IsExpanded bool
	Parent     *TreeNode
}

// IsSyntheticRoot reports whether the node is the container above the real roots
func (n *TreeNode) IsSyntheticRoot() bool {
	return n.Key == uuid.Nil
}

// IsLeaf reports whether the node has no children
func (n *TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Flatten returns all visible nodes in the tree (for list rendering)
func (n *TreeNode) Flatten() []*TreeNode {
	var result []*TreeNode
	n.flattenRecursive(&result)
	return result
}

func (n *TreeNode) flattenRecursive(result *[]*TreeNode) {
	*result = append(*result, n)
	if n.IsExpanded {
		for _, child := range n.Children {
			child.flattenRecursive(result)
		}
	}
}

// Depth returns the depth of this node in the tree
func (n *TreeNode) Depth() int {
	depth := 0
	current := n.Parent
	for current != nil {
		depth++
		current = current.Parent
	}
	return depth
}

// Find returns the node with the given key, searching the whole subtree
func (n *TreeNode) Find(key uuid.UUID) *TreeNode {
	if n.Key == key {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(key); found != nil {
			return found
		}
	}
	return nil
}

// Count returns the number of real nodes below and including n
func (n *TreeNode) Count() int {
	count := 0
	if !n.IsSyntheticRoot() {
		count = 1
	}
	for _, child := range n.Children {
		count += child.Count()
	}
	return count
}

// Toggle expands or collapses the node
func (n *TreeNode) Toggle() {
	n.IsExpanded = !n.IsExpanded
}

// Expand sets the node as expanded
func (n *TreeNode) Expand() {
	n.IsExpanded = true
}

// Collapse sets the node as collapsed
func (n *TreeNode) Collapse() {
	n.IsExpanded = false
}

// ExpandAll expands the node and every descendant
func (n *TreeNode) ExpandAll() {
	n.IsExpanded = true
	for _, child := range n.Children {
		child.ExpandAll()
	}
}

// SortKeys sorts identities in ascending byte order
func SortKeys(keys []uuid.UUID) {
	slices.SortFunc(keys, CompareKeys)
}

// CompareKeys orders identities by their byte representation
func CompareKeys(a, b uuid.UUID) int {
	for i := range a {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
