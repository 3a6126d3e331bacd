package xlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger 结构化日志接口
//
// 所有方法都是并发安全的。attrs 使用 log/slog 的属性类型，
// 与标准库生态直接互通。
type Logger interface {
	// Debug 记录 Debug 级别日志
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	// Info 记录 Info 级别日志
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	// Warn 记录 Warn 级别日志
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	// Error 记录 Error 级别日志
	Error(ctx context.Context, msg string, attrs ...slog.Attr)
}

// 编译时接口检查
var (
	_ Logger = (*slogLogger)(nil)
	_ Logger = noopLogger{}
)

// options 日志配置
type options struct {
	level  slog.Level
	json   bool
	writer io.Writer
}

// Option 日志配置选项
type Option func(*options)

// WithLevel 设置最低输出级别，默认 Info。
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithJSON 设置是否输出 JSON 格式，默认文本格式。
func WithJSON(json bool) Option {
	return func(o *options) {
		o.json = json
	}
}

// WithWriter 设置输出目标，默认 os.Stderr。传入 nil 会被静默忽略。
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// New 创建 slog 实现的日志器
func New(opts ...Option) Logger {
	o := &options{
		level:  slog.LevelInfo,
		writer: os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	hopts := &slog.HandlerOptions{Level: o.level}
	var handler slog.Handler
	if o.json {
		handler = slog.NewJSONHandler(o.writer, hopts)
	} else {
		handler = slog.NewTextHandler(o.writer, hopts)
	}
	return &slogLogger{handler: handler}
}

// NewWithHandler 用已有的 slog.Handler 创建日志器
// handler 为 nil 时返回 Noop。
func NewWithHandler(handler slog.Handler) Logger {
	if handler == nil {
		return Noop()
	}
	return &slogLogger{handler: handler}
}

// Noop 返回丢弃所有日志的实现
func Noop() Logger {
	return noopLogger{}
}

// slogLogger Logger 接口的 slog 实现
type slogLogger struct {
	handler slog.Handler
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.AddAttrs(attrs...)
	// Handler 写入失败不向业务调用链扩散
	_ = l.handler.Handle(ctx, r)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

func (l *slogLogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

func (l *slogLogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

// noopLogger 丢弃所有日志
type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...slog.Attr) {}
func (noopLogger) Info(context.Context, string, ...slog.Attr)  {}
func (noopLogger) Warn(context.Context, string, ...slog.Attr)  {}
func (noopLogger) Error(context.Context, string, ...slog.Attr) {}
