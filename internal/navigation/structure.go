package navigation

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"

	"navindex/internal/domain"
)

// structure is the identity -> node mapping of one tree together with the
// traversal and mutation algorithms over it. Every method takes the lock
// itself unless its name ends in Locked.
type structure struct {
	mu    sync.RWMutex
	nodes map[uuid.UUID]*node
}

func newStructure(capacity int) *structure {
	return &structure{nodes: make(map[uuid.UUID]*node, capacity)}
}

// A uuid.Nil content type disables type filtering in every query below.

func (s *structure) contains(key uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[key]
	return ok
}

func (s *structure) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *structure) parentKey(key uuid.UUID) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[key]
	if !ok {
		return uuid.Nil, false
	}
	return n.parent, true
}

func (s *structure) childrenKeys(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[key]
	if !ok {
		return nil, false
	}
	return s.filterLocked(n.children, contentTypeKey), true
}

func (s *structure) descendantKeys(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[key]
	if !ok {
		return nil, false
	}
	var out []uuid.UUID
	s.appendDescendantsLocked(&out, n, contentTypeKey)
	return out, true
}

// appendDescendantsLocked walks the subtree pre-order. The filter only
// decides what is emitted; traversal always continues below a node.
func (s *structure) appendDescendantsLocked(out *[]uuid.UUID, n *node, contentTypeKey uuid.UUID) {
	for _, childKey := range n.children {
		child, ok := s.nodes[childKey]
		if !ok {
			continue
		}
		if child.hasType(contentTypeKey) {
			*out = append(*out, childKey)
		}
		s.appendDescendantsLocked(out, child, contentTypeKey)
	}
}

func (s *structure) ancestorKeys(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[key]
	if !ok {
		return nil, false
	}
	var out []uuid.UUID
	// Bounded by the mapping size so a corrupted chain cannot spin forever.
	for steps := 0; !n.isRoot() && steps < len(s.nodes); steps++ {
		parent, ok := s.nodes[n.parent]
		if !ok {
			break
		}
		if parent.hasType(contentTypeKey) {
			out = append(out, parent.key)
		}
		n = parent
	}
	return out, true
}

func (s *structure) siblingKeys(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[key]
	if !ok {
		return nil, false
	}

	if n.isRoot() {
		// Roots are not indexed separately; scan for the other parentless nodes.
		roots := s.rootsLocked(contentTypeKey)
		out := roots[:0]
		for _, k := range roots {
			if k != key {
				out = append(out, k)
			}
		}
		return out, true
	}

	parent, ok := s.nodes[n.parent]
	if !ok {
		return nil, false
	}
	var out []uuid.UUID
	for _, childKey := range parent.children {
		if childKey == key {
			continue
		}
		if child, ok := s.nodes[childKey]; ok && child.hasType(contentTypeKey) {
			out = append(out, childKey)
		}
	}
	return out, true
}

func (s *structure) rootKeys(contentTypeKey uuid.UUID) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootsLocked(contentTypeKey)
}

// rootsLocked returns the parentless nodes by sort order, ties broken by key.
func (s *structure) rootsLocked(contentTypeKey uuid.UUID) []uuid.UUID {
	var roots []*node
	for _, n := range s.nodes {
		if n.isRoot() && n.hasType(contentTypeKey) {
			roots = append(roots, n)
		}
	}
	slices.SortFunc(roots, func(a, b *node) int {
		return cmp.Or(cmp.Compare(a.sortOrder, b.sortOrder), domain.CompareKeys(a.key, b.key))
	})

	out := make([]uuid.UUID, len(roots))
	for i, n := range roots {
		out[i] = n.key
	}
	return out
}

// nextSortOrderLocked returns the order that places a node after every
// current child of parent, or after every root when parent is nil.
func (s *structure) nextSortOrderLocked(parent *node) int {
	next := 0
	consider := func(n *node) {
		if n.sortOrder >= next {
			next = n.sortOrder + 1
		}
	}
	if parent == nil {
		for _, n := range s.nodes {
			if n.isRoot() {
				consider(n)
			}
		}
		return next
	}
	for _, childKey := range parent.children {
		if child, ok := s.nodes[childKey]; ok {
			consider(child)
		}
	}
	return next
}

func (s *structure) level(key uuid.UUID) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[key]
	if !ok {
		return 0, false
	}
	level := 1
	for !n.isRoot() && level <= len(s.nodes) {
		parent, ok := s.nodes[n.parent]
		if !ok {
			return 0, false
		}
		level++
		n = parent
	}
	return level, true
}

func (s *structure) filterLocked(keys []uuid.UUID, contentTypeKey uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(keys))
	for _, k := range keys {
		if n, ok := s.nodes[k]; ok && n.hasType(contentTypeKey) {
			out = append(out, k)
		}
	}
	return out
}

// add inserts key under parentKey. A nil sortOrder appends the node after
// its new siblings.
func (s *structure) add(key, contentTypeKey, parentKey uuid.UUID, sortOrder *int) bool {
	if key == uuid.Nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[key]; exists {
		return false
	}
	var parent *node
	if parentKey != uuid.Nil {
		var ok bool
		if parent, ok = s.nodes[parentKey]; !ok {
			return false
		}
	}

	if sortOrder == nil {
		n := newNode(key, contentTypeKey, s.nextSortOrderLocked(parent))
		s.nodes[key] = n
		if parent != nil {
			parent.addChild(n)
		}
		return true
	}

	n := newNode(key, contentTypeKey, *sortOrder)
	s.nodes[key] = n
	if parent != nil {
		parent.insertChild(n, s.nodes)
	}
	return true
}

func (s *structure) remove(key uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[key]
	if !ok {
		return false
	}
	s.detachLocked(n)
	s.purgeDescendantsLocked(n)
	delete(s.nodes, key)
	return true
}

// purgeDescendantsLocked deletes every descendant of n, children before
// their ancestors.
func (s *structure) purgeDescendantsLocked(n *node) {
	for _, childKey := range n.children {
		child, ok := s.nodes[childKey]
		if !ok {
			continue
		}
		s.purgeDescendantsLocked(child)
		delete(s.nodes, childKey)
	}
	n.children = nil
}

func (s *structure) move(key, targetParentKey uuid.UUID) bool {
	if key == targetParentKey {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[key]
	if !ok {
		return false
	}
	var target *node
	if targetParentKey != uuid.Nil {
		if target, ok = s.nodes[targetParentKey]; !ok {
			return false
		}
		if s.isAncestorLocked(key, target) {
			return false
		}
	}

	// The node keeps its identity and children; only its link and
	// position change.
	s.detachLocked(n)
	n.sortOrder = s.nextSortOrderLocked(target)
	if target != nil {
		target.addChild(n)
	}
	return true
}

// updateSortOrder sets the order of key and repositions it among its
// siblings.
func (s *structure) updateSortOrder(key uuid.UUID, sortOrder int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[key]
	if !ok {
		return false
	}
	n.sortOrder = sortOrder
	if n.isRoot() {
		return true
	}
	parent, ok := s.nodes[n.parent]
	if !ok {
		return true
	}
	parent.removeChild(key)
	parent.insertChild(n, s.nodes)
	return true
}

// isAncestorLocked reports whether key is n or one of n's ancestors.
func (s *structure) isAncestorLocked(key uuid.UUID, n *node) bool {
	for steps := 0; steps <= len(s.nodes); steps++ {
		if n.key == key {
			return true
		}
		if n.isRoot() {
			return false
		}
		parent, ok := s.nodes[n.parent]
		if !ok {
			return false
		}
		n = parent
	}
	return true
}

// detachLocked unlinks n from its parent and makes it a root.
func (s *structure) detachLocked(n *node) {
	if n.isRoot() {
		return
	}
	if parent, ok := s.nodes[n.parent]; ok {
		parent.removeChild(n.key)
	}
	n.parent = uuid.Nil
}

// subtreeLocked returns n and all of its descendants, pre-order.
func (s *structure) subtreeLocked(n *node) []*node {
	out := []*node{n}
	for i := 0; i < len(out); i++ {
		for _, childKey := range out[i].children {
			if child, ok := s.nodes[childKey]; ok {
				out = append(out, child)
			}
		}
	}
	return out
}

// transfer moves the subtree rooted at key from src into dst, attaching it
// under dstParentKey (uuid.Nil makes it a root of dst). Nothing changes
// unless the whole subtree fits into dst without identity clashes.
// Callers hold both write locks.
func transferLocked(src, dst *structure, key, dstParentKey uuid.UUID) bool {
	n, ok := src.nodes[key]
	if !ok {
		return false
	}
	var target *node
	if dstParentKey != uuid.Nil {
		if target, ok = dst.nodes[dstParentKey]; !ok {
			return false
		}
	}

	subtree := src.subtreeLocked(n)
	for _, m := range subtree {
		if _, clash := dst.nodes[m.key]; clash {
			return false
		}
	}

	src.detachLocked(n)
	n.sortOrder = dst.nextSortOrderLocked(target)
	for _, m := range subtree {
		delete(src.nodes, m.key)
		dst.nodes[m.key] = m
	}
	if target != nil {
		target.addChild(n)
	}
	return true
}

// lockOrdered write-locks first then second and returns the matching unlock.
// Every cross-structure operation locks the live tree first.
func lockOrdered(first, second *structure) func() {
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
