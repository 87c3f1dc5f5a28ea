package xmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMeterProvider 创建用于测试的 MeterProvider
func newTestMeterProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
	)
	return mp, reader
}

// collectSums 把导出的 Sum[int64] 指标整理为 name → value。
func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[m.Name] += dp.Value
			}
		}
	}
	return out
}

func TestOTel_ExportsCounters(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	c := NewOTel(WithMeterProvider(mp), WithComponent("ingest"))
	ctx := context.Background()
	c.Add(ctx, "items.added", 2)
	c.Add(ctx, "items.added", 3)
	c.Add(ctx, "items.failed", 1)

	assert.Equal(t, map[string]int64{"items.added": 5, "items.failed": 1}, c.Snapshot())

	sums := collectSums(t, reader)
	assert.Equal(t, int64(5), sums["xcoord.items.added"])
	assert.Equal(t, int64(1), sums["xcoord.items.failed"])
}

func TestOTel_ComponentAttribute(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	c := NewOTel(WithMeterProvider(mp), WithComponent("overflow"), WithPrefix("test."))
	c.Add(context.Background(), "hit", 1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	m := rm.ScopeMetrics[0].Metrics[0]
	assert.Equal(t, "test.hit", m.Name)
	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	v, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("component"))
	require.True(t, ok)
	assert.Equal(t, "overflow", v.AsString())
}

func TestOTel_CanceledContextStillCounts(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	c := NewOTel(WithMeterProvider(mp))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Add(ctx, "late", 1)

	assert.Equal(t, int64(1), collectSums(t, reader)["xcoord.late"])
}

func TestOTel_DefaultProvider(t *testing.T) {
	c := NewOTel()
	c.Add(context.Background(), "x", 1)
	assert.Equal(t, int64(1), c.Snapshot()["x"])
}
