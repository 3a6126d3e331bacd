package xdispatch

import (
	"fmt"
	"time"

	"github.com/omeyang/xdispatch/pkg/config/xconf"
)

// 默认配置值
const (
	DefaultMaxRetries       = 3
	DefaultBaseBackoffMs    = 1000
	DefaultJitterMaxMs      = 1000
	DefaultFailureThreshold = 5
	DefaultCooldownMs       = 15000
	DefaultBatchSize        = 32
	DefaultBatchTimeoutMs   = 10
	DefaultQueueCapacity    = 1000
	DefaultTierTimeoutMs    = 5000
)

// Config 调度核心的配置面
//
// 字段使用 koanf 标签，可通过 LoadConfig/ParseConfig 从文件或
// 字节数据加载。零值字段在 Normalize 时填充默认值。
type Config struct {
	// MaxRetries 重试次数上限（不含首次尝试）
	MaxRetries int `koanf:"max_retries"`

	// AttemptTimeoutMs 单次尝试超时；0 表示只受层级截止时间约束
	AttemptTimeoutMs int `koanf:"attempt_timeout_ms"`

	// BaseBackoffMs 指数退避基础延迟
	BaseBackoffMs int `koanf:"base_backoff_ms"`

	// JitterMaxMs 退避抖动上限（不含）；0 表示无抖动
	JitterMaxMs int `koanf:"jitter_max_ms"`

	// MaxBackoffMs 退避延迟上限；0 表示不封顶
	MaxBackoffMs int `koanf:"max_backoff_ms"`

	// FailureThreshold 连续失败多少次后熔断
	FailureThreshold int `koanf:"failure_threshold"`

	// CooldownMs 熔断打开后的冷却时间
	CooldownMs int `koanf:"cooldown_ms"`

	// BatchSize 批大小
	BatchSize int `koanf:"batch_size"`

	// BatchTimeoutMs 批窗口超时
	BatchTimeoutMs int `koanf:"batch_timeout_ms"`

	// QueueCapacity 提交队列容量
	QueueCapacity int `koanf:"queue_capacity"`

	// TierTimeoutsMs 各层级的超时预算，按层级顺序排列；
	// 比层级数短时，缺少的层级使用 DefaultTierTimeoutMs
	TierTimeoutsMs []int `koanf:"tier_timeouts_ms"`
}

// DefaultConfig 返回填充默认值的配置
func DefaultConfig() Config {
	return Config{
		MaxRetries:       DefaultMaxRetries,
		BaseBackoffMs:    DefaultBaseBackoffMs,
		JitterMaxMs:      DefaultJitterMaxMs,
		FailureThreshold: DefaultFailureThreshold,
		CooldownMs:       DefaultCooldownMs,
		BatchSize:        DefaultBatchSize,
		BatchTimeoutMs:   DefaultBatchTimeoutMs,
		QueueCapacity:    DefaultQueueCapacity,
	}
}

// Normalize 将零值字段填充为默认值
// JitterMaxMs、MaxBackoffMs、AttemptTimeoutMs 的 0 是合法取值，不填充。
func (c *Config) Normalize() {
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseBackoffMs == 0 {
		c.BaseBackoffMs = DefaultBaseBackoffMs
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.CooldownMs == 0 {
		c.CooldownMs = DefaultCooldownMs
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchTimeoutMs == 0 {
		c.BatchTimeoutMs = DefaultBatchTimeoutMs
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
}

// Validate 校验配置的取值范围
func (c *Config) Validate() error {
	checks := []struct {
		bad  bool
		desc string
	}{
		{c.MaxRetries < 0, "max_retries must be >= 0"},
		{c.AttemptTimeoutMs < 0, "attempt_timeout_ms must be >= 0"},
		{c.BaseBackoffMs <= 0, "base_backoff_ms must be > 0"},
		{c.JitterMaxMs < 0, "jitter_max_ms must be >= 0"},
		{c.MaxBackoffMs < 0, "max_backoff_ms must be >= 0"},
		{c.FailureThreshold <= 0, "failure_threshold must be > 0"},
		{c.CooldownMs <= 0, "cooldown_ms must be > 0"},
		{c.BatchSize <= 0, "batch_size must be > 0"},
		{c.BatchTimeoutMs <= 0, "batch_timeout_ms must be > 0"},
		{c.QueueCapacity <= 0, "queue_capacity must be > 0"},
	}
	for _, check := range checks {
		if check.bad {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, check.desc)
		}
	}
	for i, ms := range c.TierTimeoutsMs {
		if ms <= 0 {
			return fmt.Errorf("%w: tier_timeouts_ms[%d] must be > 0", ErrInvalidConfig, i)
		}
	}
	return nil
}

// TierTimeout 返回第 index 个层级（从 0 开始）的超时预算
func (c *Config) TierTimeout(index int) time.Duration {
	if index >= 0 && index < len(c.TierTimeoutsMs) {
		return time.Duration(c.TierTimeoutsMs[index]) * time.Millisecond
	}
	return DefaultTierTimeoutMs * time.Millisecond
}

// LoadConfig 从配置文件加载
// path 键指向配置中的调度段，空字符串表示整个文件就是调度配置。
// 加载后填充默认值并校验。
func LoadConfig(file, path string) (Config, error) {
	loader, err := xconf.New(file)
	if err != nil {
		return Config{}, err
	}
	return unmarshalConfig(loader, path)
}

// ParseConfig 从字节数据加载
func ParseConfig(data []byte, format xconf.Format, path string) (Config, error) {
	loader, err := xconf.NewFromBytes(data, format)
	if err != nil {
		return Config{}, err
	}
	return unmarshalConfig(loader, path)
}

func unmarshalConfig(loader xconf.Config, path string) (Config, error) {
	var cfg Config
	if err := loader.Unmarshal(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
