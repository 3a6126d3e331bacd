package xbackoff

import "errors"

// ErrInvalidAttempt 尝试次数不合法（attempt 从 1 开始计数）
//
// attempt <= 0 属于调用方编程错误，立即失败，不做任何修正或重试。
var ErrInvalidAttempt = errors.New("xbackoff: attempt must be >= 1")
