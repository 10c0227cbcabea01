package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"navindex/internal/domain"
	"navindex/internal/ports"
)

// subtreeCTE selects the id of a node and of all its descendants
const subtreeCTE = `
	WITH RECURSIVE subtree(id) AS (
		SELECT id FROM nodes WHERE id = ?
		UNION ALL
		SELECT n.id FROM nodes n JOIN subtree s ON n.parent_id = s.id
	)`

// BeginTx starts a write transaction
func (s *Store) BeginTx(ctx context.Context) (ports.NavigationTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &navigationTx{tx: tx, bumped: make(map[domain.LockID]bool)}, nil
}

// navigationTx implements ports.NavigationTx
type navigationTx struct {
	tx     *sql.Tx
	bumped map[domain.LockID]bool
}

// Ensure navigationTx implements NavigationTx
var _ ports.NavigationTx = (*navigationTx)(nil)

// storedNode is the part of a row the write operations need
type storedNode struct {
	id      int64
	kind    domain.ItemKind
	trashed bool
}

// writeLock bumps the tree lock once per transaction, taking SQLite's
// write lock before any structural change is made
func (t *navigationTx) writeLock(ctx context.Context, kind domain.ItemKind) error {
	lock := kind.Lock()
	if t.bumped[lock] {
		return nil
	}
	res, err := t.tx.ExecContext(ctx, `UPDATE locks SET value = value + 1 WHERE id = ?`, int(lock))
	if err != nil {
		return fmt.Errorf("failed to take %s write lock: %w", lock, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLock, lock)
	}
	t.bumped[lock] = true
	return nil
}

func (t *navigationTx) find(ctx context.Context, key uuid.UUID) (*storedNode, error) {
	var (
		n    storedNode
		kind string
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, kind, trashed FROM nodes WHERE unique_id = ?`, key.String(),
	).Scan(&n.id, &kind, &n.trashed)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	if n.kind, err = domain.ParseItemKind(kind); err != nil {
		return nil, err
	}
	return &n, nil
}

// parentID resolves a live parent of the given kind. uuid.Nil is the top level.
func (t *navigationTx) parentID(ctx context.Context, kind domain.ItemKind, parentKey uuid.UUID) (int64, error) {
	if parentKey == uuid.Nil {
		return domain.RootParentID, nil
	}
	p, err := t.find(ctx, parentKey)
	if err != nil {
		return 0, err
	}
	if p.kind != kind || p.trashed {
		return 0, fmt.Errorf("%w: %s is not a live %s", ErrInvalidParent, parentKey, kind)
	}
	return p.id, nil
}

// nextSortOrder returns the position after the last child of parentID
func (t *navigationTx) nextSortOrder(ctx context.Context, kind domain.ItemKind, parentID int64, trashed bool) (int, error) {
	var next int
	err := t.tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sort_order) + 1, 0)
		FROM nodes WHERE kind = ? AND parent_id = ? AND trashed = ?
	`, kind.String(), parentID, trashed).Scan(&next)
	return next, err
}

// InsertNode adds a live node as the last child of parentKey
func (t *navigationTx) InsertNode(ctx context.Context, kind domain.ItemKind, key, contentTypeKey, parentKey uuid.UUID) (*domain.NavigationRecord, error) {
	if key == uuid.Nil {
		return nil, fmt.Errorf("%w: nil key", ErrInvalidParent)
	}
	if err := t.writeLock(ctx, kind); err != nil {
		return nil, err
	}
	parentID, err := t.parentID(ctx, kind, parentKey)
	if err != nil {
		return nil, err
	}
	sortOrder, err := t.nextSortOrder(ctx, kind, parentID, false)
	if err != nil {
		return nil, err
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO nodes (unique_id, kind, content_type_key, parent_id, sort_order, trashed)
		VALUES (?, ?, ?, ?, ?, 0)
	`, key.String(), kind.String(), contentTypeKey.String(), parentID, sortOrder)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &domain.NavigationRecord{
		ID:             id,
		Key:            key,
		ContentTypeKey: contentTypeKey,
		ParentID:       parentID,
		SortOrder:      sortOrder,
	}, nil
}

// MoveNode re-parents a live node, appending it after its new siblings
func (t *navigationTx) MoveNode(ctx context.Context, key, parentKey uuid.UUID) error {
	n, err := t.find(ctx, key)
	if err != nil {
		return err
	}
	if n.trashed {
		return fmt.Errorf("%w: %s is in the recycle bin", ErrInvalidParent, key)
	}
	if err := t.writeLock(ctx, n.kind); err != nil {
		return err
	}
	parentID, err := t.parentID(ctx, n.kind, parentKey)
	if err != nil {
		return err
	}
	if parentID != domain.RootParentID {
		inside, err := t.inSubtree(ctx, n.id, parentID)
		if err != nil {
			return err
		}
		if inside {
			return fmt.Errorf("%w: %s is inside the subtree of %s", ErrInvalidParent, parentKey, key)
		}
	}
	return t.reattach(ctx, n, parentID, false)
}

// DeleteNode removes a node and its whole subtree
func (t *navigationTx) DeleteNode(ctx context.Context, key uuid.UUID) error {
	n, err := t.find(ctx, key)
	if err != nil {
		return err
	}
	if err := t.writeLock(ctx, n.kind); err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, subtreeCTE+`
		DELETE FROM nodes WHERE id IN (SELECT id FROM subtree)
	`, n.id)
	return err
}

// SetSortOrder changes the position of a live node among its siblings
func (t *navigationTx) SetSortOrder(ctx context.Context, key uuid.UUID, sortOrder int) error {
	n, err := t.find(ctx, key)
	if err != nil {
		return err
	}
	if n.trashed {
		return fmt.Errorf("%w: %s is in the recycle bin", ErrInvalidParent, key)
	}
	if err := t.writeLock(ctx, n.kind); err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `UPDATE nodes SET sort_order = ? WHERE id = ?`, sortOrder, n.id)
	return err
}

// TrashNode moves a live subtree into the recycle bin. The top node becomes
// a bin root; descendants keep their parents.
func (t *navigationTx) TrashNode(ctx context.Context, key uuid.UUID) error {
	n, err := t.find(ctx, key)
	if err != nil {
		return err
	}
	if n.trashed {
		return fmt.Errorf("%w: %s is already in the recycle bin", ErrInvalidParent, key)
	}
	if err := t.writeLock(ctx, n.kind); err != nil {
		return err
	}
	if err := t.setSubtreeTrashed(ctx, n.id, true); err != nil {
		return err
	}
	return t.reattach(ctx, n, domain.RootParentID, true)
}

// RestoreNode moves a bin subtree back under a live parent
func (t *navigationTx) RestoreNode(ctx context.Context, key, parentKey uuid.UUID) error {
	n, err := t.find(ctx, key)
	if err != nil {
		return err
	}
	if !n.trashed {
		return fmt.Errorf("%w: %s is not in the recycle bin", ErrInvalidParent, key)
	}
	if err := t.writeLock(ctx, n.kind); err != nil {
		return err
	}
	parentID, err := t.parentID(ctx, n.kind, parentKey)
	if err != nil {
		return err
	}
	if err := t.setSubtreeTrashed(ctx, n.id, false); err != nil {
		return err
	}
	return t.reattach(ctx, n, parentID, false)
}

func (t *navigationTx) setSubtreeTrashed(ctx context.Context, id int64, trashed bool) error {
	_, err := t.tx.ExecContext(ctx, subtreeCTE+`
		UPDATE nodes SET trashed = ? WHERE id IN (SELECT id FROM subtree)
	`, id, trashed)
	return err
}

func (t *navigationTx) reattach(ctx context.Context, n *storedNode, parentID int64, trashed bool) error {
	sortOrder, err := t.nextSortOrder(ctx, n.kind, parentID, trashed)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx,
		`UPDATE nodes SET parent_id = ?, sort_order = ? WHERE id = ?`,
		parentID, sortOrder, n.id,
	)
	return err
}

// inSubtree reports whether id lies in the subtree rooted at rootID
func (t *navigationTx) inSubtree(ctx context.Context, rootID, id int64) (bool, error) {
	var found int
	err := t.tx.QueryRowContext(ctx, subtreeCTE+`
		SELECT COUNT(*) FROM subtree WHERE id = ?
	`, rootID, id).Scan(&found)
	return found > 0, err
}

// Commit commits the transaction
func (t *navigationTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *navigationTx) Rollback() error {
	return t.tx.Rollback()
}
