package xmetrics

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultInstrumentationName = "github.com/omeyang/simkit/xmetrics"
	unknownComponent           = "unknown"
	unknownOperation           = "unknown"

	metricOperationTotal    = "simkit.operation.total"
	metricOperationDuration = "simkit.operation.duration"
)

type otelConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// Option 定义 OTel Observer 的配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTelObserver 创建基于 OpenTelemetry 指标的 Observer。
// 默认使用全局 MeterProvider。
func NewOTelObserver(opts ...Option) (Observer, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	total, err := meter.Int64Counter(
		metricOperationTotal,
		metric.WithDescription("total operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create counter failed: %w", err)
	}

	duration, err := meter.Float64Histogram(
		metricOperationDuration,
		metric.WithDescription("operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create histogram failed: %w", err)
	}

	return &otelObserver{
		total:    total,
		duration: duration,
	}, nil
}

type otelObserver struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

// Start 开始一次观测跨度。
func (o *otelObserver) Start(ctx context.Context, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	component := opts.Component
	if component == "" {
		component = unknownComponent
	}
	operation := opts.Operation
	if operation == "" {
		operation = unknownOperation
	}

	return ctx, &otelSpan{
		observer:  o,
		ctx:       ctx,
		component: component,
		operation: operation,
		kind:      opts.Kind,
		start:     time.Now(),
	}
}

type otelSpan struct {
	observer  *otelObserver
	ctx       context.Context
	component string
	operation string
	kind      Kind
	start     time.Time
	endOnce   sync.Once // 保证 End 幂等，多次调用只记录一次指标
}

// End 结束观测并记录结果。
// End 是幂等的，多次调用只会记录一次指标，
// 避免 defer 与显式调用都触发时的指标膨胀。
func (s *otelSpan) End(result Result) {
	if s == nil {
		return
	}

	s.endOnce.Do(func() {
		status := resolveStatus(result)

		// 使用不可取消的 context 记录指标，请求取消或超时的
		// 失败场景同样需要被观测到。
		metricsCtx := context.WithoutCancel(s.ctx)
		elapsed := time.Since(s.start).Seconds()
		attrs := metricAttrs(s.component, s.operation, s.kind, status, result.Attrs)
		s.observer.total.Add(metricsCtx, 1, metric.WithAttributes(attrs...))
		s.observer.duration.Record(metricsCtx, elapsed, metric.WithAttributes(attrs...))
	})
}

func resolveStatus(result Result) Status {
	if result.Status != "" {
		return result.Status
	}
	if result.Err != nil {
		return StatusError
	}
	return StatusOK
}

func metricAttrs(component, operation string, kind Kind, status Status, extra []Attr) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4+len(extra))
	attrs = append(attrs,
		attribute.String("component", component),
		attribute.String("operation", operation),
		attribute.String("kind", kind.String()),
		attribute.String("status", string(status)),
	)
	attrs = append(attrs, attrsToOTel(extra)...)
	return attrs
}

func attrsToOTel(attrs []Attr) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	converted := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Key == "" || attr.Value == nil {
			continue
		}
		converted = append(converted, toKeyValue(attr))
	}
	return converted
}

func toKeyValue(attr Attr) attribute.KeyValue {
	switch v := attr.Value.(type) {
	case string:
		return attribute.String(attr.Key, v)
	case bool:
		return attribute.Bool(attr.Key, v)
	case int:
		return attribute.Int(attr.Key, v)
	case int64:
		return attribute.Int64(attr.Key, v)
	case uint64:
		if v <= math.MaxInt64 {
			return attribute.Int64(attr.Key, int64(v))
		}
		return attribute.String(attr.Key, fmt.Sprint(v))
	case float64:
		return attribute.Float64(attr.Key, v)
	case float32:
		return attribute.Float64(attr.Key, float64(v))
	case time.Duration:
		return attribute.Int64(attr.Key, v.Nanoseconds())
	default:
		return attribute.String(attr.Key, fmt.Sprint(v))
	}
}
