// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展
//   - xmetrics: 统一观测接口，跨度计时与 OpenTelemetry 指标导出
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 库代码只依赖轻量接口，导出器按需注入
//   - 支持动态级别控制和日志文件轮转
package observability
