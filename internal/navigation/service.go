package navigation

import (
	"context"

	"github.com/google/uuid"

	"navindex/internal/domain"
	"navindex/internal/ports"
)

// Service pairs the live and bin trees of one item kind. The live tree's
// queries and mutations are promoted; the bin is reached through Bin or the
// InBin methods.
type Service struct {
	*Index
	bin *Index
}

// Ensure Service implements NavigationService
var _ ports.NavigationService = (*Service)(nil)

// NewService creates the live and bin indexes for kind.
func NewService(kind domain.ItemKind, opts ...Option) *Service {
	return &Service{
		Index: NewIndex(Config{Kind: kind, Lock: kind.Lock()}, opts...),
		bin:   NewIndex(Config{Kind: kind, Trashed: true, Lock: kind.Lock()}, opts...),
	}
}

func (s *Service) Kind() domain.ItemKind {
	return s.Index.cfg.Kind
}

// Live returns the live tree.
func (s *Service) Live() *Index {
	return s.Index
}

// Bin returns the recycle-bin tree.
func (s *Service) Bin() *Index {
	return s.bin
}

// Tree returns the bin when trashed is set, the live tree otherwise.
func (s *Service) Tree(trashed bool) ports.NavigationQueries {
	if trashed {
		return s.bin
	}
	return s.Index
}

func (s *Service) ContainsInBin(key uuid.UUID) bool {
	return s.bin.Contains(key)
}

func (s *Service) ParentKeyInBin(key uuid.UUID) (uuid.UUID, bool) {
	return s.bin.ParentKey(key)
}

func (s *Service) ChildrenKeysInBin(key uuid.UUID) ([]uuid.UUID, bool) {
	return s.bin.ChildrenKeys(key)
}

func (s *Service) DescendantKeysInBin(key uuid.UUID) ([]uuid.UUID, bool) {
	return s.bin.DescendantKeys(key)
}

func (s *Service) DescendantOrSelfKeysInBin(key uuid.UUID) ([]uuid.UUID, bool) {
	return s.bin.DescendantOrSelfKeys(key)
}

func (s *Service) AncestorKeysInBin(key uuid.UUID) ([]uuid.UUID, bool) {
	return s.bin.AncestorKeys(key)
}

func (s *Service) AncestorOrSelfKeysInBin(key uuid.UUID) ([]uuid.UUID, bool) {
	return s.bin.AncestorOrSelfKeys(key)
}

func (s *Service) SiblingKeysInBin(key uuid.UUID) ([]uuid.UUID, bool) {
	return s.bin.SiblingKeys(key)
}

func (s *Service) RootKeysInBin() ([]uuid.UUID, bool) {
	return s.bin.RootKeys()
}

// RebuildBin reloads the bin tree from the store.
func (s *Service) RebuildBin(ctx context.Context) (*domain.RebuildStats, error) {
	return s.bin.Rebuild(ctx)
}

// MoveToBin takes the subtree rooted at key out of the live tree and makes
// it a root of the bin. Both trees change together or not at all.
func (s *Service) MoveToBin(key uuid.UUID) bool {
	live, bin := s.Index.load(), s.bin.load()
	unlock := lockOrdered(live, bin)
	ok := transferLocked(live, bin, key, uuid.Nil)
	unlock()

	if !ok {
		s.Index.logger.LogRejected(context.Background(), "move-to-bin", key)
	}
	return ok
}

// RemoveFromBin permanently deletes key and its subtree from the bin.
func (s *Service) RemoveFromBin(key uuid.UUID) bool {
	return s.bin.Remove(key)
}

// RestoreFromBin moves the subtree rooted at key from the bin back into the
// live tree under targetParentKey, or as a live root when it is uuid.Nil.
func (s *Service) RestoreFromBin(key, targetParentKey uuid.UUID) bool {
	if key == targetParentKey {
		s.bin.logger.LogRejected(context.Background(), "restore", key)
		return false
	}

	live, bin := s.Index.load(), s.bin.load()
	unlock := lockOrdered(live, bin)
	ok := transferLocked(bin, live, key, targetParentKey)
	unlock()

	if !ok {
		s.bin.logger.LogRejected(context.Background(), "restore", key)
	}
	return ok
}
