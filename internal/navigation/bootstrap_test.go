package navigation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navindex/internal/domain"
)

func TestBootstrapper_Run(t *testing.T) {
	guard := newFakeGuard()
	guard.set(domain.ItemKindDocument, false, record(1, domain.RootParentID, 0), record(2, 1, 0))
	guard.set(domain.ItemKindDocument, true, record(3, domain.RootParentID, 0))
	guard.set(domain.ItemKindMedia, false, record(4, domain.RootParentID, 0))

	r := NewRegistry(WithGuard(guard))
	b := NewBootstrapper(r)
	assert.False(t, b.Ready())

	require.NoError(t, b.Run(context.Background()))
	assert.True(t, b.Ready())

	doc, _ := r.Lookup(domain.ItemKindDocument, false)
	assert.Equal(t, 2, doc.Len())
	docBin, _ := r.Lookup(domain.ItemKindDocument, true)
	assert.Equal(t, 1, docBin.Len())
	media, _ := r.Lookup(domain.ItemKindMedia, false)
	assert.Equal(t, 1, media.Len())
	mediaBin, _ := r.Lookup(domain.ItemKindMedia, true)
	assert.Zero(t, mediaBin.Len())

	assert.Equal(t, 2, guard.acquisitions(domain.LockContentTree))
	assert.Equal(t, 2, guard.acquisitions(domain.LockMediaTree))
	assert.Equal(t, 4, guard.releases())

	stats := b.Stats()
	require.Len(t, stats, 4)
	assert.Equal(t, 2, stats[0].Nodes)
}

func TestBootstrapper_Idempotent(t *testing.T) {
	guard := newFakeGuard()
	r := NewRegistry(WithGuard(guard))
	b := NewBootstrapper(r)

	require.NoError(t, b.Run(context.Background()))
	require.NoError(t, b.Run(context.Background()))
	assert.Equal(t, 4, guard.releases(), "second run must not rebuild again")
}

func TestBootstrapper_FailureRetries(t *testing.T) {
	guard := newFakeGuard()
	guard.err = errors.New("store unavailable")
	r := NewRegistry(WithGuard(guard))
	b := NewBootstrapper(r)

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, guard.err)
	assert.False(t, b.Ready())
	assert.Nil(t, b.Stats())

	guard.mu.Lock()
	guard.err = nil
	guard.mu.Unlock()

	require.NoError(t, b.Run(context.Background()))
	assert.True(t, b.Ready())
}
