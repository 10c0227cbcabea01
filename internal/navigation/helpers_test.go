package navigation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"navindex/internal/domain"
	"navindex/internal/ports"
)

type treeID struct {
	kind    domain.ItemKind
	trashed bool
}

// fakeGuard serves canned records per tree and counts lock usage.
type fakeGuard struct {
	mu       sync.Mutex
	records  map[treeID][]domain.NavigationRecord
	err      error // returned by AcquireReadLock
	readErr  error // returned by GetNodesByKind
	acquired map[domain.LockID]int
	released int
	block    chan struct{} // when set, GetNodesByKind waits on it
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{
		records:  make(map[treeID][]domain.NavigationRecord),
		acquired: make(map[domain.LockID]int),
	}
}

func (g *fakeGuard) set(kind domain.ItemKind, trashed bool, records ...domain.NavigationRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records[treeID{kind, trashed}] = records
}

func (g *fakeGuard) AcquireReadLock(ctx context.Context, lock domain.LockID) (ports.ReadScope, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.acquired[lock]++
	return &fakeScope{guard: g}, nil
}

func (g *fakeGuard) releases() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.released
}

func (g *fakeGuard) acquisitions(lock domain.LockID) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.acquired[lock]
}

type fakeScope struct {
	guard    *fakeGuard
	released bool
}

func (s *fakeScope) GetNodesByKind(ctx context.Context, kind domain.ItemKind, trashed bool) ([]domain.NavigationRecord, error) {
	if s.released {
		return nil, errors.New("scope already released")
	}
	if block := s.guard.block; block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.guard.mu.Lock()
	defer s.guard.mu.Unlock()
	if s.guard.readErr != nil {
		return nil, s.guard.readErr
	}
	return s.guard.records[treeID{kind, trashed}], nil
}

func (s *fakeScope) Release() error {
	s.guard.mu.Lock()
	defer s.guard.mu.Unlock()
	s.released = true
	s.guard.released++
	return nil
}

// key returns a readable deterministic identity for n.
func key(n byte) uuid.UUID {
	var u uuid.UUID
	u[15] = n
	return u
}

// record builds a store record with id n and the given parent id.
func record(n byte, parentID int64, sortOrder int) domain.NavigationRecord {
	return domain.NavigationRecord{
		ID:        int64(n),
		Key:       key(n),
		ParentID:  parentID,
		SortOrder: sortOrder,
	}
}

// requireConsistent checks the tree invariants of s: every parent link is
// mirrored by exactly one child entry, every child entry points back, and
// every node is reachable from a root.
func requireConsistent(t *testing.T, s *structure) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()

	reachable := make(map[uuid.UUID]bool, len(s.nodes))
	var walk func(n *node)
	walk = func(n *node) {
		require.False(t, reachable[n.key], "node %s reached twice", n.key)
		reachable[n.key] = true
		for _, ck := range n.children {
			child, ok := s.nodes[ck]
			require.True(t, ok, "child %s of %s missing from mapping", ck, n.key)
			require.Equal(t, n.key, child.parent, "child %s does not point back to %s", ck, n.key)
			walk(child)
		}
	}

	for k, n := range s.nodes {
		require.Equal(t, k, n.key)
		require.NotEqual(t, uuid.Nil, k)
		if n.isRoot() {
			walk(n)
			continue
		}
		parent, ok := s.nodes[n.parent]
		require.True(t, ok, "parent of %s missing", k)
		count := 0
		for _, ck := range parent.children {
			if ck == k {
				count++
			}
		}
		require.Equal(t, 1, count, "parent %s lists %s %d times", n.parent, k, count)
	}
	require.Len(t, reachable, len(s.nodes), "unreachable nodes present")
}
