package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"navindex/internal/domain"
	"navindex/internal/logging"
	"navindex/internal/ports"
)

// ErrNoConsistencyGuard is returned when an index without a guard is asked to rebuild.
var ErrNoConsistencyGuard = errors.New("navigation: no consistency guard configured")

// Config selects which persisted tree an Index mirrors.
type Config struct {
	Kind    domain.ItemKind
	Trashed bool
	Lock    domain.LockID
}

func (c Config) String() string {
	if c.Trashed {
		return c.Kind.String() + "/bin"
	}
	return c.Kind.String() + "/live"
}

// Variants returns the four navigation trees: live and bin for documents and media.
func Variants() []Config {
	var out []Config
	for _, kind := range domain.ItemKinds {
		out = append(out,
			Config{Kind: kind, Trashed: false, Lock: kind.Lock()},
			Config{Kind: kind, Trashed: true, Lock: kind.Lock()},
		)
	}
	return out
}

// Index is an in-memory navigation tree. Queries and single mutations are
// safe for concurrent use; Rebuild replaces the whole tree with one pointer
// swap, so readers see either the old or the new tree, never a mix.
type Index struct {
	cfg     Config
	guard   ports.ConsistencyGuard
	logger  *logging.Logger
	tracer  trace.Tracer
	metrics *rebuildMetrics

	current atomic.Pointer[structure]
	group   singleflight.Group
}

// Ensure Index implements NavigationQueries
var _ ports.NavigationQueries = (*Index)(nil)

// NewIndex creates an empty index for cfg.
func NewIndex(cfg Config, opts ...Option) *Index {
	o := applyOptions(opts)
	idx := &Index{
		cfg:     cfg,
		guard:   o.guard,
		logger:  o.logger.WithTree(cfg.Kind, cfg.Trashed),
		tracer:  o.tracerProvider.Tracer(instrumentationName),
		metrics: newRebuildMetrics(o.meterProvider),
	}
	idx.current.Store(newStructure(0))
	return idx
}

// Config returns the tree this index mirrors.
func (i *Index) Config() Config {
	return i.cfg
}

func (i *Index) load() *structure {
	return i.current.Load()
}

// Contains reports whether key is in the tree.
func (i *Index) Contains(key uuid.UUID) bool {
	return i.load().contains(key)
}

// Len returns the number of nodes in the tree.
func (i *Index) Len() int {
	return i.load().len()
}

// ParentKey returns the parent of key, uuid.Nil for a root.
func (i *Index) ParentKey(key uuid.UUID) (uuid.UUID, bool) {
	return i.load().parentKey(key)
}

// ChildrenKeys returns the children of key in insertion order.
func (i *Index) ChildrenKeys(key uuid.UUID) ([]uuid.UUID, bool) {
	return i.load().childrenKeys(key, uuid.Nil)
}

// DescendantKeys returns the subtree below key, depth-first pre-order.
func (i *Index) DescendantKeys(key uuid.UUID) ([]uuid.UUID, bool) {
	return i.load().descendantKeys(key, uuid.Nil)
}

// DescendantOrSelfKeys returns key followed by its descendants.
func (i *Index) DescendantOrSelfKeys(key uuid.UUID) ([]uuid.UUID, bool) {
	return orSelf(key, i.DescendantKeys)
}

// AncestorKeys returns the parent chain of key, nearest first.
func (i *Index) AncestorKeys(key uuid.UUID) ([]uuid.UUID, bool) {
	return i.load().ancestorKeys(key, uuid.Nil)
}

// AncestorOrSelfKeys returns key followed by its ancestors.
func (i *Index) AncestorOrSelfKeys(key uuid.UUID) ([]uuid.UUID, bool) {
	return orSelf(key, i.AncestorKeys)
}

// SiblingKeys returns the other children of key's parent, or the other
// roots when key is a root.
func (i *Index) SiblingKeys(key uuid.UUID) ([]uuid.UUID, bool) {
	return i.load().siblingKeys(key, uuid.Nil)
}

// RootKeys returns every parentless node ordered by sort order, then key.
func (i *Index) RootKeys() ([]uuid.UUID, bool) {
	return i.load().rootKeys(uuid.Nil), true
}

// Level returns the depth of key, 1 for roots.
func (i *Index) Level(key uuid.UUID) (int, bool) {
	return i.load().level(key)
}

func (i *Index) ChildrenKeysOfType(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool) {
	return i.load().childrenKeys(key, contentTypeKey)
}

func (i *Index) DescendantKeysOfType(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool) {
	return i.load().descendantKeys(key, contentTypeKey)
}

func (i *Index) AncestorKeysOfType(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool) {
	return i.load().ancestorKeys(key, contentTypeKey)
}

func (i *Index) SiblingKeysOfType(key, contentTypeKey uuid.UUID) ([]uuid.UUID, bool) {
	return i.load().siblingKeys(key, contentTypeKey)
}

func (i *Index) RootKeysOfType(contentTypeKey uuid.UUID) ([]uuid.UUID, bool) {
	return i.load().rootKeys(contentTypeKey), true
}

func orSelf(key uuid.UUID, query func(uuid.UUID) ([]uuid.UUID, bool)) ([]uuid.UUID, bool) {
	keys, ok := query(key)
	if !ok {
		return nil, false
	}
	return append([]uuid.UUID{key}, keys...), true
}

// Add inserts key under parentKey, or as a root when parentKey is uuid.Nil,
// placing it after its new siblings. It fails if key already exists or the
// parent is unknown.
func (i *Index) Add(key, contentTypeKey, parentKey uuid.UUID) bool {
	return i.add(key, contentTypeKey, parentKey, nil)
}

// AddWithSortOrder is Add with an explicit sort order, typically the one the
// store assigned to the new row.
func (i *Index) AddWithSortOrder(key, contentTypeKey, parentKey uuid.UUID, sortOrder int) bool {
	return i.add(key, contentTypeKey, parentKey, &sortOrder)
}

func (i *Index) add(key, contentTypeKey, parentKey uuid.UUID, sortOrder *int) bool {
	if !i.load().add(key, contentTypeKey, parentKey, sortOrder) {
		i.logger.LogRejected(context.Background(), "add", key)
		return false
	}
	return true
}

// UpdateSortOrder changes the sort order of key. A root moves within the
// root ordering; a child moves before the first sibling with a greater order.
func (i *Index) UpdateSortOrder(key uuid.UUID, sortOrder int) bool {
	if !i.load().updateSortOrder(key, sortOrder) {
		i.logger.LogRejected(context.Background(), "sort", key)
		return false
	}
	return true
}

// Remove deletes key and its whole subtree.
func (i *Index) Remove(key uuid.UUID) bool {
	if !i.load().remove(key) {
		i.logger.LogRejected(context.Background(), "remove", key)
		return false
	}
	return true
}

// Move re-parents key under targetParentKey, or makes it a root when
// targetParentKey is uuid.Nil, placing it after its new siblings. Moving a
// node onto itself or below one of its own descendants fails.
func (i *Index) Move(key, targetParentKey uuid.UUID) bool {
	if !i.load().move(key, targetParentKey) {
		i.logger.LogRejected(context.Background(), "move", key)
		return false
	}
	return true
}

// Rebuild replaces the tree with a snapshot read from the store under the
// tree's read lock. On failure the current tree is kept. Concurrent calls
// share one rebuild, which runs detached from any single caller's
// cancellation; a cancelled caller stops waiting and gets ctx.Err() while
// the others still receive the result.
func (i *Index) Rebuild(ctx context.Context) (*domain.RebuildStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := i.group.DoChan("rebuild", func() (any, error) {
		return i.rebuild(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.RebuildStats), nil
	}
}

func (i *Index) rebuild(ctx context.Context) (*domain.RebuildStats, error) {
	if i.guard == nil {
		return nil, ErrNoConsistencyGuard
	}

	ctx, span := i.tracer.Start(ctx, "navigation.rebuild", trace.WithAttributes(
		attribute.String("navigation.kind", i.cfg.Kind.String()),
		attribute.Bool("navigation.trashed", i.cfg.Trashed),
		attribute.String("navigation.lock", i.cfg.Lock.String()),
	))
	defer span.End()
	start := time.Now()

	records, err := i.readSnapshot(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.metrics.record(ctx, i.cfg, time.Since(start), err)
		i.logger.LogRebuild(ctx, nil, err)
		return nil, err
	}

	s, stats := buildStructure(records)
	i.current.Store(s)

	stats.Kind = i.cfg.Kind
	stats.Trashed = i.cfg.Trashed
	stats.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("navigation.nodes", stats.Nodes),
		attribute.Int("navigation.orphans", stats.Orphans),
	)
	i.metrics.record(ctx, i.cfg, stats.Duration, nil)
	i.logger.LogRebuild(ctx, &stats, nil)
	return &stats, nil
}

func (i *Index) readSnapshot(ctx context.Context) (records []domain.NavigationRecord, err error) {
	scope, err := i.guard.AcquireReadLock(ctx, i.cfg.Lock)
	if err != nil {
		return nil, fmt.Errorf("acquire %s read lock: %w", i.cfg.Lock, err)
	}
	defer func() {
		if relErr := scope.Release(); relErr != nil && err == nil {
			records, err = nil, fmt.Errorf("release %s read lock: %w", i.cfg.Lock, relErr)
		}
	}()

	records, err = scope.GetNodesByKind(ctx, i.cfg.Kind, i.cfg.Trashed)
	if err != nil {
		return nil, fmt.Errorf("read %s nodes: %w", i.cfg, err)
	}
	return records, nil
}
