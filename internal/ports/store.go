package ports

import (
	"context"

	"github.com/google/uuid"

	"navindex/internal/domain"
)

// NavigationStore is the authoritative source of parent/child structure
type NavigationStore interface {
	// GetNodesByKind returns every persisted node of one kind, live or trashed
	GetNodesByKind(ctx context.Context, kind domain.ItemKind, trashed bool) ([]domain.NavigationRecord, error)
}

// ConsistencyGuard hands out read-locked scopes over the store
type ConsistencyGuard interface {
	// AcquireReadLock blocks until the lock can be held for reading.
	// The returned scope must be released by the caller.
	AcquireReadLock(ctx context.Context, lock domain.LockID) (ReadScope, error)
}

// ReadScope is a consistent, read-locked view of the store
type ReadScope interface {
	NavigationStore

	// Release ends the scope and drops the read lock
	Release() error
}

// NavigationWriter persists structural changes made through the application layer
type NavigationWriter interface {
	BeginTx(ctx context.Context) (NavigationTx, error)
}

// NavigationTx represents a transaction for atomic structural updates.
// A uuid.Nil parent key means "top level".
type NavigationTx interface {
	// Node operations
	InsertNode(ctx context.Context, kind domain.ItemKind, key, contentTypeKey, parentKey uuid.UUID) (*domain.NavigationRecord, error)
	MoveNode(ctx context.Context, key, parentKey uuid.UUID) error
	DeleteNode(ctx context.Context, key uuid.UUID) error
	SetSortOrder(ctx context.Context, key uuid.UUID, sortOrder int) error

	// Recycle bin operations (apply to the whole subtree)
	TrashNode(ctx context.Context, key uuid.UUID) error
	RestoreNode(ctx context.Context, key, parentKey uuid.UUID) error

	// Transaction control
	Commit() error
	Rollback() error
}
