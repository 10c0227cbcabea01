package navigation

import (
	"slices"

	"github.com/google/uuid"
)

// node is one entry of a structure's arena. Parent and children are
// identities resolved through the owning structure, never pointers.
type node struct {
	key            uuid.UUID
	contentTypeKey uuid.UUID
	parent         uuid.UUID // uuid.Nil for roots
	children       []uuid.UUID
	sortOrder      int
}

func newNode(key, contentTypeKey uuid.UUID, sortOrder int) *node {
	return &node{key: key, contentTypeKey: contentTypeKey, sortOrder: sortOrder}
}

func (n *node) isRoot() bool {
	return n.parent == uuid.Nil
}

// addChild appends child and points it at n.
// The caller must have detached child from its previous parent.
func (n *node) addChild(child *node) {
	n.children = append(n.children, child.key)
	child.parent = n.key
}

// removeChild drops key from the children, if present.
func (n *node) removeChild(key uuid.UUID) {
	if i := slices.Index(n.children, key); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
}

// insertChild places child before the first child with a greater sort
// order, keeping children that share an order in insertion order.
func (n *node) insertChild(child *node, nodes map[uuid.UUID]*node) {
	i := slices.IndexFunc(n.children, func(k uuid.UUID) bool {
		sibling, ok := nodes[k]
		return ok && sibling.sortOrder > child.sortOrder
	})
	if i < 0 {
		n.addChild(child)
		return
	}
	n.children = slices.Insert(n.children, i, child.key)
	child.parent = n.key
}

func (n *node) hasType(contentTypeKey uuid.UUID) bool {
	return contentTypeKey == uuid.Nil || n.contentTypeKey == contentTypeKey
}
