// Package resilience 提供弹性执行相关的子包。
//
// 子包列表：
//   - xbackoff: 指数退避计算，支持抖动与服务端重试提示
//   - xrace: 截止时间竞速执行，超时即判负
//   - xbreaker: 熔断器封装，基于 sony/gobreaker 两段式接口
//   - xretry: 带预算约束的重试执行器，基于 avast/retry-go
//   - xtier: 多级后端降级链，每级独立熔断与重试
//
// 设计原则：
//   - 所有阻塞操作接受 context.Context，尊重调用方截止时间
//   - 时钟通过 clockwork 注入，便于确定性测试
//   - 失败分类统一走 xoutcome 的结果分类体系
package resilience
