// Package dispatch 提供请求调度相关的子包。
//
// 子包列表：
//   - xoutcome: 统一的结果分类（成功/可重试/致命/超时/熔断拒绝）
//   - xdispatch: 调度器门面，组合批处理、降级链、重试与熔断
package dispatch
