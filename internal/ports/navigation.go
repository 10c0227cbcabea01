package ports

import (
	"context"

	"github.com/google/uuid"

	"navindex/internal/domain"
)

// NavigationQueries answers structural questions about one navigation tree.
// Every method is total: an unknown key yields an empty result and false.
// A parent of uuid.Nil means the node is a root.
type NavigationQueries interface {
	Contains(key uuid.UUID) bool
	Len() int

	ParentKey(key uuid.UUID) (uuid.UUID, bool)
	ChildrenKeys(key uuid.UUID) ([]uuid.UUID, bool)
	DescendantKeys(key uuid.UUID) ([]uuid.UUID, bool)
	DescendantOrSelfKeys(key uuid.UUID) ([]uuid.UUID, bool)
	AncestorKeys(key uuid.UUID) ([]uuid.UUID, bool)
	AncestorOrSelfKeys(key uuid.UUID) ([]uuid.UUID, bool)
	SiblingKeys(key uuid.UUID) ([]uuid.UUID, bool)
	RootKeys() ([]uuid.UUID, bool)
	Level(key uuid.UUID) (int, bool)

	// Content type filtered variants
	ChildrenKeysOfType(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool)
	DescendantKeysOfType(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool)
	AncestorKeysOfType(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool)
	SiblingKeysOfType(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool)
	RootKeysOfType(contentTypeKey uuid.UUID) ([]uuid.UUID, bool)
}

// NavigationService is the live and recycle bin navigation of one item kind
type NavigationService interface {
	Kind() domain.ItemKind

	// Tree returns the live tree, or the recycle bin tree when trashed is set
	Tree(trashed bool) NavigationQueries

	// Live tree management
	Add(key, contentTypeKey, parentKey uuid.UUID) bool
	AddWithSortOrder(key, contentTypeKey, parentKey uuid.UUID, sortOrder int) bool
	Remove(key uuid.UUID) bool
	Move(key, targetParentKey uuid.UUID) bool
	UpdateSortOrder(key uuid.UUID, sortOrder int) bool
	Rebuild(ctx context.Context) (*domain.RebuildStats, error)

	// Recycle bin management
	MoveToBin(key uuid.UUID) bool
	RemoveFromBin(key uuid.UUID) bool
	RestoreFromBin(key, targetParentKey uuid.UUID) bool
	RebuildBin(ctx context.Context) (*domain.RebuildStats, error)
}

// NavigationRegistry resolves the navigation service for an item kind
type NavigationRegistry interface {
	Service(kind domain.ItemKind) (NavigationService, bool)
	Services() []NavigationService
}

// NavigationBootstrapper performs the one-shot startup rebuild of every tree
type NavigationBootstrapper interface {
	Run(ctx context.Context) error
	Ready() bool
}
