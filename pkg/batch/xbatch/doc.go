// Package xbatch 提供微批聚合器。
//
// # 聚合模型
//
// 调用方通过 Submit 提交单个请求，立即拿到一个 Future 句柄；
// 请求进入容量有界的队列（满时阻塞调用方，形成背压，绝不静默丢弃）。
// 汇聚侧由单个 drain goroutine 将请求累积进当前批窗口，
// 以下任一条件先满足即密封窗口并触发冲刷：
//
//   - 窗口内请求数达到 batchSize（默认 32）；
//   - 窗口打开后经过 batchTimeout（默认 10ms）且至少有一个请求。
//
// 空窗口永远不会因超时冲刷：计时从第一个请求落入新窗口时才开始，
// 空闲期不产生任何后端调用。
//
// # 冲刷与结果投递
//
// 密封的窗口交给 worker pool 并发执行后端批量调用，冲刷不会阻塞
// 汇聚循环。每个请求的 Future 独立以对应的结果切片元素完成；
// 批级失败（后端错误或结果数不匹配）会以 BatchError 失败该批的
// 全部 Future。
//
// # 顺序保证
//
// 单个窗口内请求按提交顺序处理；跨窗口的批之间没有顺序保证。
//
// # 关闭
//
// Close 拒绝新的提交，排干队列并冲刷未密封的窗口，等待全部在途
// 冲刷完成后返回；任何已接受的请求都不会被静默丢弃。
package xbatch
