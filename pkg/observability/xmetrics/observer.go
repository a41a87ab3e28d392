package xmetrics

import (
	"context"
	"strconv"
)

// Kind 表示观测跨度类型。
type Kind int

const (
	// KindInternal 表示进程内计算操作。
	KindInternal Kind = iota
	// KindStorage 表示缓存文件等本地存储操作。
	KindStorage
	// KindProvider 表示从数据提供方加载字段的操作。
	KindProvider
)

// String 返回 Kind 的可读字符串表示，用于指标维度和日志输出。
func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindStorage:
		return "storage"
	case KindProvider:
		return "provider"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Status 表示观测结果状态。
type Status string

const (
	// StatusOK 表示成功。
	StatusOK Status = "ok"
	// StatusError 表示失败。
	StatusError Status = "error"
)

// Attr 表示观测属性。
type Attr struct {
	Key   string
	Value any
}

// SpanOptions 定义观测跨度的创建参数。
type SpanOptions struct {
	// Component 标识组件名称，如 "xobjcache"。
	Component string
	// Operation 标识操作名称，如 "open"。
	Operation string
	// Kind 标识跨度类型。
	Kind Kind
	// Attrs 附加属性。
	Attrs []Attr
}

// Result 表示观测跨度结束时的结果。
type Result struct {
	// Status 表示操作状态；为空时根据 Err 推导。
	Status Status
	// Err 表示操作错误。
	Err error
	// Attrs 附加属性。
	Attrs []Attr
}

// Span 表示一次观测跨度。
type Span interface {
	// End 结束观测并记录结果。实现应保证幂等。
	End(result Result)
}

// Observer 定义统一观测接口。
type Observer interface {
	// Start 开始一次观测跨度。
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// NoopObserver 是空实现。
type NoopObserver struct{}

// Start 返回 ctx 和空跨度。若 ctx 为 nil，返回 context.Background()。
func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 是空跨度实现。
type NoopSpan struct{}

// End 空实现，不做任何处理。
func (NoopSpan) End(_ Result) {}

// Start 使用 observer 开始观测，nil observer 时返回空跨度。
// 保证返回非 nil 的 context.Context 和非 nil 的 Span：
// nil ctx 会被替换为 context.Background()，
// 自定义 Observer 返回 nil Span 时兜底为 [NoopSpan]。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	outCtx, span := observer.Start(ctx, opts)
	if outCtx == nil {
		outCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return outCtx, span
}
