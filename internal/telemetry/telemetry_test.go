package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navindex/internal/adapters/sqlite"
	"navindex/internal/domain"
	"navindex/internal/logging"
	"navindex/internal/navigation"
)

func TestTelemetry_RecordsBootstrapRebuilds(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tel := New(logger)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "nav.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	registry := navigation.NewRegistry(
		navigation.WithGuard(store),
		navigation.WithTracerProvider(tel.TracerProvider),
		navigation.WithMeterProvider(tel.MeterProvider),
	)
	require.NoError(t, navigation.NewBootstrapper(registry).Run(context.Background()))

	docs, _ := registry.Lookup(domain.ItemKindDocument, false)
	_, err = docs.Rebuild(context.Background())
	require.NoError(t, err)

	rebuilds, err := tel.Rebuilds(context.Background())
	require.NoError(t, err)
	require.Len(t, rebuilds, 4)

	assert.Equal(t, "document", rebuilds[0].Kind)
	assert.False(t, rebuilds[0].Trashed)
	assert.Equal(t, int64(2), rebuilds[0].Rebuilds)
	assert.Equal(t, "document", rebuilds[1].Kind)
	assert.True(t, rebuilds[1].Trashed)
	assert.Equal(t, "media", rebuilds[2].Kind)
	for _, r := range rebuilds {
		assert.Zero(t, r.Failures)
		assert.GreaterOrEqual(t, r.Total.Nanoseconds(), int64(0))
	}

	assert.Contains(t, logs.String(), "span=navigation.rebuild")
	assert.Contains(t, logs.String(), "navigation.kind=media")
}

func TestTelemetry_EmptyBeforeAnyRebuild(t *testing.T) {
	tel := New(logging.NoopLogger())
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	rebuilds, err := tel.Rebuilds(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rebuilds)
}
