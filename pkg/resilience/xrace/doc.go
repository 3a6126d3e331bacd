// Package xrace 提供单次操作与截止时间的竞速执行。
//
// # 语义
//
// Race 启动操作和一个截止时间计时器，谁先完成谁决定结果：
//
//   - 操作先返回值：KindSuccess；
//   - 操作先返回错误：按 xoutcome 规则分类（致命错误原样上抛，不重试）；
//   - 计时器先到期：KindTimeout，同时取消传给操作的 context。
//
// 截止时间一旦宣告即具有权威性：操作在到期之后、取消被观察之前的窄窗口
// 内产生的迟到结果会被丢弃，避免结果二次投递的歧义。
//
// # 资源约束
//
// 结果通道带缓冲，后台 goroutine 在操作返回后立即退出，不会因竞速方
// 放弃等待而泄漏。操作自身必须响应 context 取消，否则竞速方只能放弃
// 等待，调用可能仍在对端继续执行。
//
// # 时钟
//
// 计时器通过 clockwork.Clock 注入，测试中可用 fake clock 精确推进时间。
package xrace
