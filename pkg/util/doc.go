// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xpool: 泛型 Worker Pool，背压投递、panic 恢复、优雅关闭
package util
