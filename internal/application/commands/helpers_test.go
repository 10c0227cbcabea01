package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"navindex/internal/domain"
	"navindex/internal/navigation"
	"navindex/internal/ports"
)

var (
	keyA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	keyB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	keyC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	keyD = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
	keyX = uuid.MustParse("00000000-0000-0000-0000-0000000000ff")

	folderType = uuid.MustParse("11111111-0000-0000-0000-000000000001")
	pageType   = uuid.MustParse("11111111-0000-0000-0000-000000000002")
)

// newTestRegistry builds a document tree A -> (B -> C), D and an empty bin.
func newTestRegistry(t *testing.T) *navigation.Registry {
	t.Helper()
	r := navigation.NewRegistry()
	docs, _ := r.Lookup(domain.ItemKindDocument, false)
	for _, add := range []struct{ key, ct, parent uuid.UUID }{
		{keyA, folderType, uuid.Nil},
		{keyB, folderType, keyA},
		{keyC, pageType, keyB},
		{keyD, pageType, uuid.Nil},
	} {
		if !docs.Add(add.key, add.ct, add.parent) {
			t.Fatalf("failed to add %s", add.key)
		}
	}
	return r
}

func lookup(t *testing.T, r *navigation.Registry, trashed bool) *navigation.Index {
	t.Helper()
	idx, ok := r.Lookup(domain.ItemKindDocument, trashed)
	if !ok {
		t.Fatal("document tree missing")
	}
	return idx
}

// recordingWriter records every persisted operation.
type recordingWriter struct {
	mu        sync.Mutex
	ops       []string
	failOp    string // operation prefix that fails
	sortOrder int    // sort order InsertNode reports
	commits   int
	rollbacks int
}

func (w *recordingWriter) BeginTx(ctx context.Context) (ports.NavigationTx, error) {
	return &recordingTx{w: w}, nil
}

func (w *recordingWriter) record(op string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failOp != "" && strings.HasPrefix(op, w.failOp) {
		return errors.New("store rejected " + op)
	}
	w.ops = append(w.ops, op)
	return nil
}

type recordingTx struct {
	w *recordingWriter
}

func (tx *recordingTx) InsertNode(ctx context.Context, kind domain.ItemKind, key, contentTypeKey, parentKey uuid.UUID) (*domain.NavigationRecord, error) {
	if err := tx.w.record(fmt.Sprintf("insert %s %s", key, parentKey)); err != nil {
		return nil, err
	}
	return &domain.NavigationRecord{Key: key, ContentTypeKey: contentTypeKey, SortOrder: tx.w.sortOrder}, nil
}

func (tx *recordingTx) MoveNode(ctx context.Context, key, parentKey uuid.UUID) error {
	return tx.w.record(fmt.Sprintf("move %s %s", key, parentKey))
}

func (tx *recordingTx) DeleteNode(ctx context.Context, key uuid.UUID) error {
	return tx.w.record(fmt.Sprintf("delete %s", key))
}

func (tx *recordingTx) SetSortOrder(ctx context.Context, key uuid.UUID, sortOrder int) error {
	return tx.w.record(fmt.Sprintf("sort %s %d", key, sortOrder))
}

func (tx *recordingTx) TrashNode(ctx context.Context, key uuid.UUID) error {
	return tx.w.record(fmt.Sprintf("trash %s", key))
}

func (tx *recordingTx) RestoreNode(ctx context.Context, key, parentKey uuid.UUID) error {
	return tx.w.record(fmt.Sprintf("restore %s %s", key, parentKey))
}

func (tx *recordingTx) Commit() error {
	tx.w.mu.Lock()
	defer tx.w.mu.Unlock()
	tx.w.commits++
	return nil
}

func (tx *recordingTx) Rollback() error {
	tx.w.mu.Lock()
	defer tx.w.mu.Unlock()
	tx.w.rollbacks++
	return nil
}

// recordingNotifier collects published rebuild requests.
type recordingNotifier struct {
	mu       sync.Mutex
	requests []domain.RebuildRequest
	err      error
}

func (n *recordingNotifier) Publish(ctx context.Context, req domain.RebuildRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.requests = append(n.requests, req)
	return nil
}

func (n *recordingNotifier) Subscribe(ctx context.Context) (<-chan domain.RebuildRequest, error) {
	return nil, errors.New("not supported")
}

func (n *recordingNotifier) Close() error { return nil }

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
