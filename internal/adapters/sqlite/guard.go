package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"navindex/internal/domain"
	"navindex/internal/ports"
)

// AcquireReadLock opens a read transaction and reads the lock row, which
// pins the snapshot every read in the returned scope sees. Writers keep
// running in WAL mode; the scope simply does not observe them.
func (s *Store) AcquireReadLock(ctx context.Context, lock domain.LockID) (ports.ReadScope, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	version, err := readLock(ctx, tx, lock)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &readScope{tx: tx, lock: lock, version: version}, nil
}

// readScope implements ports.ReadScope
type readScope struct {
	tx      *sql.Tx
	lock    domain.LockID
	version int64

	once sync.Once
	err  error
}

// Ensure readScope implements ReadScope
var _ ports.ReadScope = (*readScope)(nil)

// GetNodesByKind reads one tree inside the locked snapshot
func (r *readScope) GetNodesByKind(ctx context.Context, kind domain.ItemKind, trashed bool) ([]domain.NavigationRecord, error) {
	if kind.Lock() != r.lock {
		return nil, fmt.Errorf("%s nodes are not guarded by the %s lock", kind, r.lock)
	}
	return getNodesByKind(ctx, r.tx, kind, trashed)
}

// Release ends the read transaction. It is safe to call more than once.
func (r *readScope) Release() error {
	r.once.Do(func() {
		if err := r.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.err = err
		}
	})
	return r.err
}
