// Package xbreaker 提供按后端身份共享的熔断器。
//
// # 设计理念
//
// 一个 Breaker 实例保护一个逻辑后端（backend identity），被访问该后端的
// 所有并发调用共享，生命周期与后端绑定一致。底层状态机使用
// [sony/gobreaker/v2] 的 TwoStepCircuitBreaker：先 Allow 取得执行许可，
// 调用结束后通过 done 回调报告结果，天然适配"熔断器包在重试循环外侧"
// 的组合方式——一次逻辑调用只计一次熔断统计。
//
// # 状态机
//
//   - Closed：调用放行，连续失败达到 failureThreshold（默认 5）转入 Open；
//   - Open：本地直接拒绝（OpenError），冷却 cooldown（默认 15s）后的
//     下一个调用转入 HalfOpen 作为试探；
//   - HalfOpen：只放行一个试探调用（MaxRequests=1）。试探成功转回 Closed
//     并清零失败计数；试探失败立即重新 Open（安全默认，不重新累积）。
//
// # 失败判定
//
// 只有超时和瞬时错误计入失败（xoutcome.CountsAsFailure）；致命错误说明
// 请求本身有问题而非后端不健康，按成功上报给状态机，不触发熔断。
//
// # 与重试的组合
//
// 拒绝错误 OpenError 实现 Retryable() == false 和 CircuitOpen() == true：
// 重试执行器遇到它立即停止，降级链遇到它切换下一层级。
//
// [sony/gobreaker/v2]: https://github.com/sony/gobreaker
package xbreaker
