package xdispatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xdispatch/pkg/config/xconf"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
}

func TestConfig_Normalize(t *testing.T) {
	var cfg Config
	cfg.Normalize()

	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultBaseBackoffMs, cfg.BaseBackoffMs)
	assert.Equal(t, DefaultFailureThreshold, cfg.FailureThreshold)
	assert.Equal(t, DefaultCooldownMs, cfg.CooldownMs)
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultBatchTimeoutMs, cfg.BatchTimeoutMs)
	assert.Equal(t, DefaultQueueCapacity, cfg.QueueCapacity)
	// 0 是这些字段的合法取值，不填充
	assert.Zero(t, cfg.JitterMaxMs)
	assert.Zero(t, cfg.MaxBackoffMs)
	assert.Zero(t, cfg.AttemptTimeoutMs)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"NegativeMaxRetries", func(c *Config) { c.MaxRetries = -1 }},
		{"ZeroBaseBackoff", func(c *Config) { c.BaseBackoffMs = 0 }},
		{"NegativeJitter", func(c *Config) { c.JitterMaxMs = -1 }},
		{"ZeroFailureThreshold", func(c *Config) { c.FailureThreshold = 0 }},
		{"ZeroCooldown", func(c *Config) { c.CooldownMs = 0 }},
		{"ZeroBatchSize", func(c *Config) { c.BatchSize = 0 }},
		{"ZeroQueueCapacity", func(c *Config) { c.QueueCapacity = 0 }},
		{"BadTierTimeout", func(c *Config) { c.TierTimeoutsMs = []int{5000, 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_TierTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TierTimeoutsMs = []int{5000, 1000}

	assert.Equal(t, 5*time.Second, cfg.TierTimeout(0))
	assert.Equal(t, time.Second, cfg.TierTimeout(1))
	// 超出列表的层级使用默认值
	assert.Equal(t, DefaultTierTimeoutMs*time.Millisecond, cfg.TierTimeout(2))
	assert.Equal(t, DefaultTierTimeoutMs*time.Millisecond, cfg.TierTimeout(-1))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dispatch:
  max_retries: 2
  base_backoff_ms: 100
  jitter_max_ms: 50
  failure_threshold: 3
  cooldown_ms: 2000
  batch_size: 16
  batch_timeout_ms: 5
  queue_capacity: 500
  tier_timeouts_ms: [5000, 1000, 3000]
`), 0o600))

	cfg, err := LoadConfig(path, "dispatch")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 100, cfg.BaseBackoffMs)
	assert.Equal(t, 50, cfg.JitterMaxMs)
	assert.Equal(t, []int{5000, 1000, 3000}, cfg.TierTimeoutsMs)
	// 未出现的键落到默认值
	assert.Equal(t, DefaultTierTimeoutMs*time.Millisecond, cfg.TierTimeout(3))
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"batch_size": 8, "cooldown_ms": 500}`), xconf.FormatJSON, "")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.BatchSize)
	assert.Equal(t, 500, cfg.CooldownMs)
	// 其余字段填充默认值
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
}

func TestParseConfig_InvalidValues(t *testing.T) {
	_, err := ParseConfig([]byte(`{"max_retries": -1}`), xconf.FormatJSON, "")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
