package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"navindex/internal/application"
	"navindex/internal/domain"
	"navindex/internal/navigation"
	"navindex/internal/ports"
)

// snapshotGuard serves fixed records for every tree.
type snapshotGuard struct {
	records map[domain.ItemKind]map[bool][]domain.NavigationRecord
	err     error
}

func (g *snapshotGuard) AcquireReadLock(ctx context.Context, lock domain.LockID) (ports.ReadScope, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g, nil
}

func (g *snapshotGuard) GetNodesByKind(ctx context.Context, kind domain.ItemKind, trashed bool) ([]domain.NavigationRecord, error) {
	return g.records[kind][trashed], nil
}

func (g *snapshotGuard) Release() error { return nil }

func newSnapshotGuard() *snapshotGuard {
	return &snapshotGuard{records: map[domain.ItemKind]map[bool][]domain.NavigationRecord{
		domain.ItemKindDocument: {
			false: {
				{ID: 1, Key: keyA, ParentID: domain.RootParentID},
				{ID: 2, Key: keyB, ParentID: 1},
			},
			true: {
				{ID: 3, Key: keyC, ParentID: domain.RootParentID},
			},
		},
		domain.ItemKindMedia: {
			false: {
				{ID: 4, Key: keyD, ParentID: domain.RootParentID},
			},
		},
	}}
}

func TestRebuildCommand_SingleTree(t *testing.T) {
	r := navigation.NewRegistry(navigation.WithGuard(newSnapshotGuard()))
	notifier := &recordingNotifier{}
	cmd := NewRebuildCommand(Env{Registry: r, Notifier: notifier}, "document", true)
	cmd.Broadcast = true

	result, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Stats) != 1 || !result.Stats[0].Trashed || result.Stats[0].Nodes != 1 {
		t.Errorf("unexpected stats %+v", result.Stats)
	}
	if lookup(t, r, false).Len() != 0 {
		t.Error("live tree should not be rebuilt")
	}
	if !lookup(t, r, true).Contains(keyC) {
		t.Error("expected bin rebuilt")
	}
	want := []domain.RebuildRequest{{Kind: domain.ItemKindDocument, Trashed: true}}
	if diff := cmp.Diff(want, notifier.requests); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestRebuildCommand_All(t *testing.T) {
	r := navigation.NewRegistry(navigation.WithGuard(newSnapshotGuard()))
	result, err := NewRebuildAllCommand(Env{Registry: r}).Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Stats) != 4 {
		t.Fatalf("expected 4 trees, got %d", len(result.Stats))
	}
	if !contains(result.Message, "(4 nodes)") {
		t.Errorf("unexpected message %q", result.Message)
	}
	media, _ := r.Lookup(domain.ItemKindMedia, false)
	if roots, _ := media.RootKeys(); !cmp.Equal([]uuid.UUID{keyD}, roots) {
		t.Errorf("expected media root %s, got %v", keyD, roots)
	}
}

func TestRebuildCommand_Failure(t *testing.T) {
	guard := newSnapshotGuard()
	guard.err = errors.New("locked")
	r := navigation.NewRegistry(navigation.WithGuard(guard))

	_, err := NewRebuildCommand(Env{Registry: r}, "media", false).Execute(context.Background())
	if err == nil || !contains(err.Error(), "media tree") {
		t.Errorf("expected wrapped media tree error, got %v", err)
	}
}

func TestBootstrapCommand(t *testing.T) {
	guard := newSnapshotGuard()
	guard.err = errors.New("store down")
	r := navigation.NewRegistry(navigation.WithGuard(guard))
	b := navigation.NewBootstrapper(r)
	cmd := NewBootstrapCommand(b)

	_, err := cmd.Execute(context.Background())
	if !errors.Is(err, application.ErrNotReady) || !errors.Is(err, guard.err) {
		t.Fatalf("expected ErrNotReady wrapping the store error, got %v", err)
	}

	guard.err = nil
	result, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AlreadyReady {
		t.Error("first successful run should not report already ready")
	}

	result, err = cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.AlreadyReady {
		t.Error("expected already ready on second run")
	}
}
