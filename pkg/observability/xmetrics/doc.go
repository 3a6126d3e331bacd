// Package xmetrics 提供调度核心的统一观测接口。
//
// Observer 定义四类观测点：重试尝试、层级回退、批量冲刷、熔断器状态迁移。
// 各组件通过 WithObserver 选项注入，nil observer 等价于 NoopObserver，
// 观测永远不会影响业务路径。
//
// 提供两个实现：
//   - NoopObserver：空实现，零开销；
//   - OTelObserver：基于 OpenTelemetry metric API，
//     通过 MeterProvider 注入，便于测试时使用 manual reader。
package xmetrics
