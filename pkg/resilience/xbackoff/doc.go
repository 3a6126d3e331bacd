// Package xbackoff 提供重试退避延迟的计算。
//
// # 设计理念
//
// 退避计算是纯函数式的：给定尝试次数（和可选的服务端提示），返回下一次
// 重试前应等待的时长。计算器不负责真正的等待，等待由重试执行器完成。
//
// 核心实现 Exponential：
//
//	delay = base * 2^(attempt-1) + jitter, jitter ∈ [0, jitterMax)
//
// 配置了 maxDelay 时计算值被钳制到 maxDelay。服务端提示（类似 Retry-After）
// 拥有绝对优先级：存在提示时原样返回提示值，不做指数计算，也不受
// maxDelay 钳制。
//
// # 随机源
//
// 抖动使用请求级的 math/rand/v2 随机源，而不是共享的全局源：避免高并发
// 下的锁竞争，也便于测试时通过 WithRand 注入固定种子获得确定性序列。
// 计算器实例应在每次逻辑调用时创建，单个实例不是并发安全的。
//
// # 使用方式
//
//	calc := xbackoff.NewExponential(
//	    xbackoff.WithBase(time.Second),
//	    xbackoff.WithJitterMax(time.Second),
//	    xbackoff.WithMaxDelay(30*time.Second),
//	)
//	delay, err := calc.Delay(3) // ∈ [4s, 5s)
package xbackoff
