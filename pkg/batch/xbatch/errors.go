package xbatch

import (
	"errors"
	"fmt"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
)

var (
	// ErrNilContext 传入的 context 为 nil
	ErrNilContext = errors.New("xbatch: context cannot be nil")

	// ErrNilBackend 传入的批量后端为 nil
	ErrNilBackend = errors.New("xbatch: backend cannot be nil")

	// ErrEmptyName 批聚合器名称为空
	ErrEmptyName = errors.New("xbatch: batcher name cannot be empty")

	// ErrClosed 批聚合器已关闭，拒绝新的提交
	ErrClosed = errors.New("xbatch: batcher is closed")

	// ErrResultLength 后端返回的结果数与请求数不匹配
	ErrResultLength = errors.New("xbatch: backend result length mismatch")
)

// BatchError 批级失败
//
// 后端批量调用失败时，同一批内的每个 Future 都以同一个 BatchError
// 完成。Size 是失败批的请求数。
type BatchError struct {
	// Err 底层失败原因
	Err error
	// Size 失败批的请求数
	Size int
}

// Error 实现 error 接口
func (e *BatchError) Error() string {
	return fmt.Sprintf("xbatch: batch of %d failed: %v", e.Size, e.Err)
}

// Unwrap 返回底层错误
func (e *BatchError) Unwrap() error {
	return e.Err
}

// Retryable 批级失败的可重试性跟随底层错误
func (e *BatchError) Retryable() bool {
	return xoutcome.IsRetryable(e.Err)
}
