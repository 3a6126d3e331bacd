// Package xconf 提供基于 koanf 的配置加载。
//
// 支持 YAML 与 JSON 两种格式：从文件加载时按扩展名自动检测，
// 从字节数据加载时显式指定。反序列化默认使用 koanf 结构体标签。
//
// 调度核心的配置面（xdispatch.Config）通过本包加载后再做校验，
// 基础操作可直接使用 Client() 返回的 koanf 实例。
package xconf
