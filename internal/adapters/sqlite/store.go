package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"navindex/internal/domain"
	"navindex/internal/ports"
)

const schemaVersion = "1"

var (
	// ErrNodeNotFound is returned when a key is not in the store
	ErrNodeNotFound = errors.New("node not found")
	// ErrInvalidParent is returned when a parent cannot hold the node
	ErrInvalidParent = errors.New("invalid parent")
	// ErrUnknownLock is returned for a lock id with no row in the locks table
	ErrUnknownLock = errors.New("unknown lock")
)

// Store is the authoritative node store backed by SQLite
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the store ports
var (
	_ ports.NavigationStore  = (*Store)(nil)
	_ ports.ConsistencyGuard = (*Store)(nil)
	_ ports.NavigationWriter = (*Store)(nil)
)

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL lets snapshot readers run alongside a writer
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS nodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			unique_id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			content_type_key TEXT NOT NULL,
			parent_id INTEGER NOT NULL DEFAULT -1,
			sort_order INTEGER NOT NULL DEFAULT 0,
			trashed INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS locks (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			value INTEGER NOT NULL DEFAULT 1
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind, trashed);
		CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.seed(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	return s, nil
}

// seed records the schema version and makes sure every tree lock has a row
func (s *Store) seed() error {
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		return err
	}
	for _, kind := range domain.ItemKinds {
		lock := kind.Lock()
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO locks (id, name, value) VALUES (?, ?, 1)`, int(lock), lock.String()); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// GetNodesByKind reads one tree outside any lock. Rebuilds go through
// AcquireReadLock instead.
func (s *Store) GetNodesByKind(ctx context.Context, kind domain.ItemKind, trashed bool) ([]domain.NavigationRecord, error) {
	return getNodesByKind(ctx, s.db, kind, trashed)
}

func getNodesByKind(ctx context.Context, q querier, kind domain.ItemKind, trashed bool) ([]domain.NavigationRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, unique_id, content_type_key, parent_id, sort_order, trashed
		FROM nodes
		WHERE kind = ? AND trashed = ?
		ORDER BY parent_id, sort_order, id
	`, kind.String(), trashed)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s nodes: %w", kind, err)
	}
	defer rows.Close()

	var records []domain.NavigationRecord
	for rows.Next() {
		var (
			r          domain.NavigationRecord
			key, ctKey string
		)
		if err := rows.Scan(&r.ID, &key, &ctKey, &r.ParentID, &r.SortOrder, &r.Trashed); err != nil {
			return nil, err
		}
		if r.Key, err = uuid.Parse(key); err != nil {
			return nil, fmt.Errorf("node %d has malformed key %q: %w", r.ID, key, err)
		}
		if r.ContentTypeKey, err = uuid.Parse(ctKey); err != nil {
			return nil, fmt.Errorf("node %d has malformed content type %q: %w", r.ID, ctKey, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// TreeCount is the number of nodes in one tree
type TreeCount struct {
	Kind    domain.ItemKind
	Trashed bool
	Nodes   int
}

// Stats counts the nodes of every tree, including empty ones
func (s *Store) Stats(ctx context.Context) ([]TreeCount, error) {
	var counts []TreeCount
	for _, kind := range domain.ItemKinds {
		for _, trashed := range []bool{false, true} {
			c := TreeCount{Kind: kind, Trashed: trashed}
			err := s.db.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM nodes WHERE kind = ? AND trashed = ?`,
				kind.String(), trashed,
			).Scan(&c.Nodes)
			if err != nil {
				return nil, fmt.Errorf("failed to count %s nodes: %w", kind, err)
			}
			counts = append(counts, c)
		}
	}
	return counts, nil
}

// LockValue returns the current version of a tree lock. Every write
// transaction bumps the lock of the tree it touches.
func (s *Store) LockValue(ctx context.Context, lock domain.LockID) (int64, error) {
	return readLock(ctx, s.db, lock)
}

func readLock(ctx context.Context, q querier, lock domain.LockID) (int64, error) {
	var value int64
	err := q.QueryRowContext(ctx, `SELECT value FROM locks WHERE id = ?`, int(lock)).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLock, lock)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s lock: %w", lock, err)
	}
	return value, nil
}
