package navigation

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"navindex/internal/domain"
)

// buildStructure turns a store snapshot into a fresh structure. Records are
// linked in SortOrder so children come out in persisted order, and parent
// ids are resolved after every node exists so row order does not matter.
// Records that cannot be linked become roots; the result always satisfies
// the tree invariants.
func buildStructure(records []domain.NavigationRecord) (*structure, domain.RebuildStats) {
	stats := domain.RebuildStats{Records: len(records)}

	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b domain.NavigationRecord) int {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})

	s := newStructure(len(ordered))
	idToKey := make(map[int64]uuid.UUID, len(ordered))
	accepted := ordered[:0]
	for _, r := range ordered {
		if r.Key == uuid.Nil {
			stats.Skipped++
			continue
		}
		if _, dup := s.nodes[r.Key]; dup {
			stats.Skipped++
			continue
		}
		s.nodes[r.Key] = newNode(r.Key, r.ContentTypeKey, r.SortOrder)
		idToKey[r.ID] = r.Key
		accepted = append(accepted, r)
	}

	for _, r := range accepted {
		if r.IsRoot() {
			continue
		}
		parentKey, ok := idToKey[r.ParentID]
		if !ok || parentKey == r.Key {
			stats.Orphans++
			continue
		}
		s.nodes[parentKey].addChild(s.nodes[r.Key])
	}

	stats.Orphans += breakCycles(s, accepted)
	stats.Nodes = len(s.nodes)
	for _, n := range s.nodes {
		if n.isRoot() {
			stats.Roots++
		}
	}
	return s, stats
}

// breakCycles re-roots every node that cannot be reached from a root, which
// only happens when the snapshot's parent links form a cycle. It returns the
// number of nodes re-rooted.
func breakCycles(s *structure, order []domain.NavigationRecord) int {
	reached := make(map[uuid.UUID]struct{}, len(s.nodes))
	mark := func(n *node) {
		stack := []*node{n}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := reached[top.key]; seen {
				continue
			}
			reached[top.key] = struct{}{}
			for _, childKey := range top.children {
				stack = append(stack, s.nodes[childKey])
			}
		}
	}

	for _, n := range s.nodes {
		if n.isRoot() {
			mark(n)
		}
	}
	if len(reached) == len(s.nodes) {
		return 0
	}

	rerooted := 0
	for _, r := range order {
		if _, seen := reached[r.Key]; seen {
			continue
		}
		n := s.nodes[r.Key]
		s.detachLocked(n)
		mark(n)
		rerooted++
	}
	return rerooted
}
