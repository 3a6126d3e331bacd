// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展
//   - xmetrics: 调度核心的统一观测接口（尝试、层级、批冲刷、熔断迁移）
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 观测不影响业务路径，nil 观测器等价于空实现
package observability
