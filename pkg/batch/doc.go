// Package batch 提供批处理相关的子包。
//
// 子包列表：
//   - xbatch: 微批聚合器，按大小或时间窗口封批，有界队列背压
package batch
