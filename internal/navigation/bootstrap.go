package navigation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"navindex/internal/domain"
	"navindex/internal/logging"
)

// Bootstrapper rebuilds every tree of a registry once at startup.
// Until Run succeeds the trees answer every query with "not found".
type Bootstrapper struct {
	registry *Registry
	logger   *logging.Logger

	mu    sync.Mutex
	done  bool
	stats []domain.RebuildStats
}

// NewBootstrapper creates a bootstrapper for registry. Only the logger
// option is used; guards and providers belong to the registry's indexes.
func NewBootstrapper(registry *Registry, opts ...Option) *Bootstrapper {
	o := applyOptions(opts)
	return &Bootstrapper{registry: registry, logger: o.logger}
}

// Run rebuilds all four trees concurrently. It returns the first error,
// leaving the bootstrapper not ready so a later call retries. Once Run has
// succeeded further calls return immediately.
func (b *Bootstrapper) Run(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return nil
	}

	start := time.Now()
	indexes := b.registry.Indexes()
	stats := make([]domain.RebuildStats, len(indexes))

	g, gctx := errgroup.WithContext(ctx)
	for i, idx := range indexes {
		g.Go(func() error {
			s, err := idx.Rebuild(gctx)
			if err != nil {
				return fmt.Errorf("rebuild %s: %w", idx.Config(), err)
			}
			stats[i] = *s
			return nil
		})
	}
	err := g.Wait()
	b.logger.LogBootstrap(ctx, len(indexes), time.Since(start), err)
	if err != nil {
		return err
	}

	b.done = true
	b.stats = stats
	return nil
}

// Ready reports whether Run has completed successfully.
func (b *Bootstrapper) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Stats returns the per-tree results of the successful Run, in
// Registry.Indexes order. It is nil before then.
func (b *Bootstrapper) Stats() []domain.RebuildStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}
