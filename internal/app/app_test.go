package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navindex/internal/adapters/redis"
	"navindex/internal/config"
	"navindex/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "nav.db")
	cfg.LogLevel = "error"
	return cfg
}

func TestOpen_BootstrapAndEnv(t *testing.T) {
	a, err := Open(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Bootstrap(context.Background()))
	assert.True(t, a.Bootstrapper.Ready())

	env := a.Env()
	assert.Nil(t, env.Notifier, "expected no notifier without redis_url")
	assert.NotNil(t, env.Writer)
	assert.Equal(t, a.Origin, env.Origin)

	err = a.Watch(context.Background(), nil)
	require.Error(t, err)
}

func TestOpen_Telemetry(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry = true
	a, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NotNil(t, a.Telemetry)

	require.NoError(t, a.Bootstrap(context.Background()))
	rebuilds, err := a.Telemetry.Rebuilds(context.Background())
	require.NoError(t, err)
	require.Len(t, rebuilds, 4)
	for _, r := range rebuilds {
		assert.Equal(t, int64(1), r.Rebuilds)
	}

	plain, err := Open(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = plain.Close() })
	assert.Nil(t, plain.Telemetry)
}

func TestOpen_InvalidLogLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogLevel = "loud"
	_, err := Open(cfg)
	require.Error(t, err)
}

func TestWatch_RebuildsOnForeignRequest(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RedisURL = fmt.Sprintf("redis://%s", mr.Addr())

	a, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Bootstrap(context.Background()))

	// Another process writes straight to the store
	key := uuid.New()
	tx, err := a.Store.BeginTx(context.Background())
	require.NoError(t, err)
	_, err = tx.InsertNode(context.Background(), domain.ItemKindMedia, key, uuid.New(), uuid.Nil)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	media, ok := a.Registry.Lookup(domain.ItemKindMedia, false)
	require.True(t, ok)
	require.False(t, media.Contains(key))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rebuilt := make(chan error, 16)
	go func() {
		_ = a.Watch(ctx, func(req domain.RebuildRequest, stats *domain.RebuildStats, err error) {
			rebuilt <- err
		})
	}()

	other, err := redis.NewNotifier(redis.NotifierOptions{URL: cfg.RedisURL, Channel: cfg.RebuildChannel})
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })

	// Publish until the watcher has subscribed and reacted
	require.Eventually(t, func() bool {
		_ = other.Publish(ctx, domain.RebuildRequest{Kind: domain.ItemKindMedia, Origin: "elsewhere"})
		select {
		case err := <-rebuilt:
			return err == nil
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)

	assert.True(t, media.Contains(key))
}
