// Package xlog 提供调度核心内部使用的结构化日志接口。
//
// # 设计理念
//
// 库代码不应强迫调用方接受某个具体日志实现。xlog 定义最小的 Logger
// 接口（context + log/slog 属性），默认实现是对 slog.Handler 的薄封装，
// 调用方也可以用自己的实现替换。
//
// 各组件通过 WithLogger 选项接收 Logger；未注入时保持静默（Noop），
// 日志缺失不影响任何功能语义。
//
// # 使用方式
//
//	logger := xlog.New(
//	    xlog.WithLevel(slog.LevelDebug),
//	    xlog.WithJSON(true),
//	)
//	breaker := xbreaker.New("primary", xbreaker.WithLogger(logger))
package xlog
