package xmetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMeterProvider 创建用于测试的 MeterProvider。
func newTestMeterProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
	)
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestNewOTelObserverDefault(t *testing.T) {
	obs, err := NewOTelObserver()
	require.NoError(t, err)
	require.NotNil(t, obs)
}

func TestNewOTelObserverEmptyInstrumentationName(t *testing.T) {
	// 空名称应回退到默认值
	obs, err := NewOTelObserver(WithInstrumentationName(""))
	require.NoError(t, err)
	require.NotNil(t, obs)
}

func TestOTelObserverRecordsMetrics(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	obs, err := NewOTelObserver(WithMeterProvider(mp))
	require.NoError(t, err)

	_, span := obs.Start(context.Background(), SpanOptions{
		Component: "xobjcache",
		Operation: "open",
		Kind:      KindStorage,
	})
	span.End(Result{})

	rm := collect(t, reader)
	total, ok := findMetric(rm, metricOperationTotal)
	require.True(t, ok, "operation total metric present")

	sum, ok := total.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	dp := sum.DataPoints[0]
	assert.Equal(t, int64(1), dp.Value)

	wantAttrs := attribute.NewSet(
		attribute.String("component", "xobjcache"),
		attribute.String("operation", "open"),
		attribute.String("kind", "storage"),
		attribute.String("status", "ok"),
	)
	assert.True(t, dp.Attributes.Equals(&wantAttrs), "got %v", dp.Attributes.ToSlice())

	_, ok = findMetric(rm, metricOperationDuration)
	assert.True(t, ok, "operation duration metric present")
}

func TestOTelObserverErrorStatus(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	obs, err := NewOTelObserver(WithMeterProvider(mp))
	require.NoError(t, err)

	_, span := obs.Start(context.Background(), SpanOptions{
		Component: "xobjcache",
		Operation: "close",
		Kind:      KindStorage,
	})
	span.End(Result{Err: errors.New("merge failed")})

	rm := collect(t, reader)
	total, ok := findMetric(rm, metricOperationTotal)
	require.True(t, ok)
	sum, ok := total.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	status, ok := sum.DataPoints[0].Attributes.Value("status")
	require.True(t, ok)
	assert.Equal(t, "error", status.AsString())
}

func TestOTelSpanEndIdempotent(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	obs, err := NewOTelObserver(WithMeterProvider(mp))
	require.NoError(t, err)

	_, span := obs.Start(context.Background(), SpanOptions{
		Component: "xobjcache",
		Operation: "open",
	})
	span.End(Result{})
	span.End(Result{Err: errors.New("should not be recorded")})

	rm := collect(t, reader)
	total, ok := findMetric(rm, metricOperationTotal)
	require.True(t, ok)
	sum, ok := total.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1, "second End must not add a data point")
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestOTelObserverDefaultsUnknownNames(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	obs, err := NewOTelObserver(WithMeterProvider(mp))
	require.NoError(t, err)

	_, span := obs.Start(context.Background(), SpanOptions{})
	span.End(Result{})

	rm := collect(t, reader)
	total, ok := findMetric(rm, metricOperationTotal)
	require.True(t, ok)
	sum := total.Data.(metricdata.Sum[int64])
	comp, ok := sum.DataPoints[0].Attributes.Value("component")
	require.True(t, ok)
	assert.Equal(t, unknownComponent, comp.AsString())
}

func TestAttrConversion(t *testing.T) {
	got := attrsToOTel([]Attr{
		{Key: "s", Value: "str"},
		{Key: "b", Value: true},
		{Key: "i", Value: 7},
		{Key: "", Value: "dropped"},
		{Key: "nil", Value: nil},
		{Key: "f", Value: 1.5},
	})
	require.Len(t, got, 4)
	assert.Equal(t, attribute.String("s", "str"), got[0])
	assert.Equal(t, attribute.Bool("b", true), got[1])
	assert.Equal(t, attribute.Int("i", 7), got[2])
	assert.Equal(t, attribute.Float64("f", 1.5), got[3])
}
