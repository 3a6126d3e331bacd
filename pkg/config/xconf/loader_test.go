package xconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatchSettings struct {
	MaxRetries int    `koanf:"max_retries"`
	BatchSize  int    `koanf:"batch_size"`
	Backend    string `koanf:"backend"`
}

const yamlDoc = `
dispatch:
  max_retries: 5
  batch_size: 16
  backend: primary
`

const jsonDoc = `{"dispatch": {"max_retries": 2, "batch_size": 8, "backend": "cache"}}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_YAML(t *testing.T) {
	cfg, err := New(writeFile(t, "conf.yaml", yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Format())

	var s dispatchSettings
	require.NoError(t, cfg.Unmarshal("dispatch", &s))
	assert.Equal(t, 5, s.MaxRetries)
	assert.Equal(t, 16, s.BatchSize)
	assert.Equal(t, "primary", s.Backend)
}

func TestNew_JSON(t *testing.T) {
	cfg, err := New(writeFile(t, "conf.json", jsonDoc))
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Format())

	var s dispatchSettings
	require.NoError(t, cfg.Unmarshal("dispatch", &s))
	assert.Equal(t, 2, s.MaxRetries)
	assert.Equal(t, "cache", s.Backend)
}

func TestNew_Errors(t *testing.T) {
	t.Run("EmptyPath", func(t *testing.T) {
		_, err := New("")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		_, err := New("conf.toml")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, ErrLoadFailed)
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		_, err := New(writeFile(t, "bad.yaml", "dispatch: [unclosed"))
		assert.ErrorIs(t, err, ErrParseFailed)
	})
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte(jsonDoc), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, cfg.Path())

	var s dispatchSettings
	require.NoError(t, cfg.Unmarshal("dispatch", &s))
	assert.Equal(t, 8, s.BatchSize)
}

func TestNewFromBytes_EmptyData(t *testing.T) {
	cfg, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)

	var s dispatchSettings
	require.NoError(t, cfg.Unmarshal("dispatch", &s))
	assert.Zero(t, s)
}

func TestNewFromBytes_InvalidFormat(t *testing.T) {
	_, err := NewFromBytes([]byte("{}"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReload(t *testing.T) {
	path := writeFile(t, "conf.yaml", yamlDoc)
	cfg, err := New(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`
dispatch:
  max_retries: 9
`), 0o600))
	require.NoError(t, cfg.Reload())

	var s dispatchSettings
	require.NoError(t, cfg.Unmarshal("dispatch", &s))
	assert.Equal(t, 9, s.MaxRetries)
}

func TestReload_FromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte(jsonDoc), FormatJSON)
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Reload(), ErrReloadFromBytes)
}

func TestClient(t *testing.T) {
	cfg, err := NewFromBytes([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Client().Int("dispatch.max_retries"))
}
