// Package xpool 提供泛型 worker pool。
//
// 用于并发处理批量冲刷等异步任务：worker 从有界队列取任务执行，
// handler panic 被就地恢复并记录日志，单个任务的失败不影响 pool。
//
// 与丢弃式异步队列不同，Dispatch 在队列满时阻塞调用方（背压），
// 只有 context 取消或 pool 停止才会放弃投递。Stop 是优雅关闭：
// 拒绝新任务，等待队列中剩余任务全部处理完成后返回。
package xpool
