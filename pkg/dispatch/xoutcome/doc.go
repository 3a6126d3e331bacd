// Package xoutcome 提供调度核心统一的结果分类模型。
//
// # 设计理念
//
// 上游各层（超时竞速、重试、熔断、批处理、降级链）都需要对一次调用的结果
// 做出决策：重试、熔断统计、切换下一层级，还是原样上抛。xoutcome 把这些
// 决策需要的信息收敛为两部分：
//
//   - 错误分类类型：FatalError / TransientError / TimeoutError，
//     都实现 RetryableError 接口，通过 errors.As 沿错误链识别；
//   - Outcome[T]：带标签的结果值，调用方可以直接对 Kind 做分支，
//     而不是逐个 errors.Is/As 判断。
//
// # 分类规则
//
//   - KindSuccess：err == nil；
//   - KindTimeout：TimeoutError 或 context.DeadlineExceeded；
//   - KindCircuitOpen：实现 CircuitOpenError 接口的错误（见 xbreaker）；
//   - KindFatal：Retryable() 返回 false 的错误，以及 context.Canceled；
//   - KindRetryable：其余错误。未知错误默认可重试，与退避重试配合时
//     由重试次数上限兜底。
//
// # 传播约束
//
// 任何一层都不允许把 FatalError 降级为可重试错误；包装错误时必须保留
// Unwrap 链，使 errors.As 仍能找到最初的分类。
package xoutcome
