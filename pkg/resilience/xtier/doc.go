// Package xtier 提供熔断保护执行器与多层回退链。
//
// # 两个层次
//
//   - Tier：单个后端身份的熔断保护执行器。先取熔断器许可，
//     再交给重试器在本层级的截止时间预算内执行；重试期间的中间失败
//     不影响熔断统计，只有本次逻辑调用的最终结果记一次。
//   - Chain：按顺序尝试多个 Tier 的回退链。第一个成功的层级短路返回，
//     全部失败时返回聚合了每个层级结果的 ExhaustedError。
//
// # 回退语义
//
// 上一层级的 CircuitOpen、FatalError、TimedOut 和可重试失败都视为
// "尝试下一层级"，任何单层失败都不会提前上抛；诊断信息
// （每层耗时、失败原因、应答层级）完整保留在 Result 中。
//
// # 截止时间
//
// 每个层级有自己的超时预算（WithTimeout），层级截止时间取
// now+timeout 与调用方 context 截止时间中较早者。
package xtier
