// Package xmetrics 提供统一的操作观测接口和 OpenTelemetry 实现。
//
// # 设计理念
//
// 业务包不直接依赖 OTel API，而是通过 Observer 接口上报观测跨度：
//   - Start 开始一次操作观测
//   - Span.End 结束观测并记录结果
//
// 这样缓存管理器、数据提供方等组件可以在不引入 OTel 依赖的场景下
// 用 NoopObserver 零成本运行，在生产环境切换到 NewOTelObserver。
//
// # 指标
//
// OTel 实现为每次跨度记录两个指标：
//   - simkit.operation.total: 操作计数，按 component/operation/kind/status 维度
//   - simkit.operation.duration: 操作耗时直方图（秒），维度同上
//
// # 使用
//
// 组件内部统一通过包级 Start 辅助函数上报，它对 nil context、
// nil observer 和自定义实现返回的 nil Span 都做了兜底。
package xmetrics
