// Package config 提供配置加载相关的子包。
//
// 子包列表：
//   - xconf: 基于 koanf 的配置加载，支持 YAML/JSON 与热重载
package config
