package navigation

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navindex/internal/domain"
)

// newPopulatedService builds live 1 -> 2 -> 3 and live root 4, bin root 10.
func newPopulatedService(t *testing.T) *Service {
	t.Helper()
	s := NewService(domain.ItemKindDocument)
	require.True(t, s.Add(key(1), uuid.Nil, uuid.Nil))
	require.True(t, s.Add(key(2), uuid.Nil, key(1)))
	require.True(t, s.Add(key(3), uuid.Nil, key(2)))
	require.True(t, s.Add(key(4), uuid.Nil, uuid.Nil))
	require.True(t, s.Bin().Add(key(10), uuid.Nil, uuid.Nil))
	return s
}

func TestService_Variants(t *testing.T) {
	s := NewService(domain.ItemKindMedia)
	assert.Equal(t, domain.ItemKindMedia, s.Kind())
	assert.Equal(t, Config{Kind: domain.ItemKindMedia, Lock: domain.LockMediaTree}, s.Live().Config())
	assert.Equal(t, Config{Kind: domain.ItemKindMedia, Trashed: true, Lock: domain.LockMediaTree}, s.Bin().Config())
	assert.Same(t, s.Bin(), s.Tree(true))
	assert.Same(t, s.Live(), s.Tree(false))
}

func TestService_LiveAndBinAreIndependent(t *testing.T) {
	s := newPopulatedService(t)

	assert.False(t, s.Contains(key(10)))
	assert.True(t, s.ContainsInBin(key(10)))
	assert.False(t, s.ContainsInBin(key(1)))

	roots, _ := s.RootKeysInBin()
	assert.Equal(t, []uuid.UUID{key(10)}, roots)
}

func TestService_MoveToBin(t *testing.T) {
	s := newPopulatedService(t)

	require.True(t, s.MoveToBin(key(2)))

	assert.False(t, s.Contains(key(2)))
	assert.False(t, s.Contains(key(3)))
	children, _ := s.ChildrenKeys(key(1))
	assert.Empty(t, children)

	parent, ok := s.ParentKeyInBin(key(2))
	require.True(t, ok)
	assert.Equal(t, uuid.Nil, parent)
	children, ok = s.ChildrenKeysInBin(key(2))
	require.True(t, ok)
	assert.Equal(t, []uuid.UUID{key(3)}, children)

	ancestors, _ := s.AncestorKeysInBin(key(3))
	assert.Equal(t, []uuid.UUID{key(2)}, ancestors)
	self, _ := s.AncestorOrSelfKeysInBin(key(3))
	assert.Equal(t, []uuid.UUID{key(3), key(2)}, self)
	desc, _ := s.DescendantOrSelfKeysInBin(key(2))
	assert.Equal(t, []uuid.UUID{key(2), key(3)}, desc)
	siblings, _ := s.SiblingKeysInBin(key(2))
	assert.Equal(t, []uuid.UUID{key(10)}, siblings)

	requireConsistent(t, s.Live().load())
	requireConsistent(t, s.Bin().load())

	assert.False(t, s.MoveToBin(key(2)), "already in the bin")
}

func TestService_RestoreFromBin(t *testing.T) {
	s := newPopulatedService(t)
	require.True(t, s.MoveToBin(key(2)))

	require.True(t, s.RestoreFromBin(key(2), key(4)))

	assert.False(t, s.ContainsInBin(key(2)))
	assert.False(t, s.ContainsInBin(key(3)))
	parent, ok := s.ParentKey(key(2))
	require.True(t, ok)
	assert.Equal(t, key(4), parent)
	descendants, _ := s.DescendantKeys(key(4))
	assert.Equal(t, []uuid.UUID{key(2), key(3)}, descendants)

	requireConsistent(t, s.Live().load())
	requireConsistent(t, s.Bin().load())
}

func TestService_RestoreFromBinAsRoot(t *testing.T) {
	s := newPopulatedService(t)
	require.True(t, s.RestoreFromBin(key(10), uuid.Nil))

	roots, _ := s.RootKeys()
	assert.Equal(t, []uuid.UUID{key(1), key(4), key(10)}, roots)
	binRoots, _ := s.RootKeysInBin()
	assert.Empty(t, binRoots)
}

func TestService_TransfersAppendAfterRoots(t *testing.T) {
	s := newPopulatedService(t)
	require.True(t, s.Bin().UpdateSortOrder(key(10), 3))

	// key(2) sorts before key(10) by key but lands after it by order.
	require.True(t, s.MoveToBin(key(2)))
	binRoots, _ := s.RootKeysInBin()
	assert.Equal(t, []uuid.UUID{key(10), key(2)}, binRoots)

	require.True(t, s.UpdateSortOrder(key(4), 0))
	require.True(t, s.RestoreFromBin(key(2), uuid.Nil))
	roots, _ := s.RootKeys()
	assert.Equal(t, []uuid.UUID{key(1), key(4), key(2)}, roots)
}

func TestService_RestoreFromBinRejects(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(s *Service)
		key    uuid.UUID
		target uuid.UUID
	}{
		{"not in bin", nil, key(1), uuid.Nil},
		{"target is self", nil, key(10), key(10)},
		{"target not in live tree", nil, key(10), key(99)},
		{"identity clash", func(s *Service) {
			require.True(t, s.Bin().Add(key(11), uuid.Nil, key(10)))
			require.True(t, s.Add(key(11), uuid.Nil, uuid.Nil))
		}, key(10), uuid.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newPopulatedService(t)
			if tt.setup != nil {
				tt.setup(s)
			}
			liveLen, binLen := s.Live().Len(), s.Bin().Len()

			assert.False(t, s.RestoreFromBin(tt.key, tt.target))
			assert.Equal(t, liveLen, s.Live().Len())
			assert.Equal(t, binLen, s.Bin().Len())
			requireConsistent(t, s.Live().load())
			requireConsistent(t, s.Bin().load())
		})
	}
}

func TestService_RemoveFromBin(t *testing.T) {
	s := newPopulatedService(t)
	require.True(t, s.Bin().Add(key(11), uuid.Nil, key(10)))

	require.True(t, s.RemoveFromBin(key(10)))
	assert.Zero(t, s.Bin().Len())
	assert.False(t, s.RemoveFromBin(key(10)))
	assert.Equal(t, 4, s.Live().Len())
}

func TestService_ConcurrentTransfers(t *testing.T) {
	s := NewService(domain.ItemKindDocument)
	for i := 1; i <= 30; i++ {
		require.True(t, s.Add(key(byte(i)), uuid.Nil, uuid.Nil))
	}

	var wg sync.WaitGroup
	for w := 0; w < 6; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				k := key(byte(1 + (i+offset)%30))
				if i%2 == 0 {
					s.MoveToBin(k)
				} else {
					s.RestoreFromBin(k, uuid.Nil)
				}
				s.RootKeys()
				s.RootKeysInBin()
			}
		}(w * 5)
	}
	wg.Wait()

	assert.Equal(t, 30, s.Live().Len()+s.Bin().Len())
	requireConsistent(t, s.Live().load())
	requireConsistent(t, s.Bin().load())
}

func TestService_RebuildBin(t *testing.T) {
	guard := newFakeGuard()
	guard.set(domain.ItemKindDocument, false, record(1, domain.RootParentID, 0))
	guard.set(domain.ItemKindDocument, true, record(7, domain.RootParentID, 0), record(8, 7, 0))

	s := NewService(domain.ItemKindDocument, WithGuard(guard))
	stats, err := s.RebuildBin(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.Trashed)
	assert.Equal(t, 2, stats.Nodes)

	assert.Zero(t, s.Live().Len(), "live tree untouched by bin rebuild")
	children, _ := s.ChildrenKeysInBin(key(7))
	assert.Equal(t, []uuid.UUID{key(8)}, children)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	services := r.Services()
	require.Len(t, services, 2)
	assert.Equal(t, domain.ItemKindDocument, services[0].Kind())
	assert.Equal(t, domain.ItemKindMedia, services[1].Kind())

	_, ok := r.Service(domain.ItemKindUnknown)
	assert.False(t, ok)

	indexes := r.Indexes()
	require.Len(t, indexes, 4)
	got := make([]Config, len(indexes))
	for i, idx := range indexes {
		got[i] = idx.Config()
	}
	assert.Equal(t, Variants(), got)

	bin, ok := r.Lookup(domain.ItemKindMedia, true)
	require.True(t, ok)
	assert.Equal(t, "media/bin", bin.Config().String())
}
