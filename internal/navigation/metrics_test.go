package navigation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"navindex/internal/domain"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestIndex_RebuildMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	guard := newFakeGuard()
	guard.set(domain.ItemKindDocument, true, record(1, domain.RootParentID, 0))
	idx := NewIndex(Config{Kind: domain.ItemKindDocument, Trashed: true, Lock: domain.LockContentTree},
		WithGuard(guard), WithMeterProvider(mp))

	_, err := idx.Rebuild(context.Background())
	require.NoError(t, err)
	guard.readErr = errors.New("boom")
	_, err = idx.Rebuild(context.Background())
	require.Error(t, err)

	succeeded := attribute.NewSet(
		attribute.String("kind", "document"),
		attribute.Bool("trashed", true),
		attribute.Bool("error", false),
	)
	failed := attribute.NewSet(
		attribute.String("kind", "document"),
		attribute.Bool("trashed", true),
		attribute.Bool("error", true),
	)

	metrics := collect(t, reader)

	count, ok := metrics[MetricRebuildCount].Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum for %s", MetricRebuildCount)
	assert.True(t, count.IsMonotonic)
	counts := make(map[attribute.Distinct]int64)
	for _, dp := range count.DataPoints {
		counts[dp.Attributes.Equivalent()] = dp.Value
	}
	assert.Equal(t, map[attribute.Distinct]int64{
		succeeded.Equivalent(): 1,
		failed.Equivalent():    1,
	}, counts)

	duration, ok := metrics[MetricRebuildDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected a float64 histogram for %s", MetricRebuildDuration)
	require.Len(t, duration.DataPoints, 2)
	for _, dp := range duration.DataPoints {
		assert.Equal(t, uint64(1), dp.Count)
		assert.GreaterOrEqual(t, dp.Sum, 0.0)
		assert.True(t, dp.Attributes.Equals(&succeeded) || dp.Attributes.Equals(&failed),
			"unexpected attributes %v", dp.Attributes.ToSlice())
	}
	assert.Equal(t, "ms", metrics[MetricRebuildDuration].Unit)
}
