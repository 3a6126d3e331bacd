// Package xretry 提供带截止时间预算的重试执行器。
//
// # 设计理念
//
// 重试循环底层使用 [avast/retry-go/v5]，但延迟计算交给 xbackoff、
// 单次尝试交给 xrace 竞速执行，形成：
//
//	Execute → retry-go 循环 → xrace.Race（每次尝试） → 后端操作
//
// 每次尝试使用不晚于整体截止时间的尝试级截止时间（WithAttemptTimeout）。
// 结果决策完全由 xoutcome 分类驱动：
//
//   - KindSuccess：立即返回；
//   - KindFatal / KindCircuitOpen：立即返回，不重试；
//   - KindRetryable / KindTimeout：还有尝试预算时按退避延迟后重试。
//
// # 截止时间预算
//
// 计算出的退避延迟如果会睡过整体截止时间，则不再等待，直接返回最后
// 一次失败——快速失败优于静默超出调用方预期。服务端重试提示
// （TransientError.RetryAfter）优先于本地退避计算，但同样受预算约束。
//
// # 随机源
//
// 退避计算器按逻辑调用创建（请求级随机源），多 goroutine 并发调用同一个
// Retryer 是安全的。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
