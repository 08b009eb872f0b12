package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Logging.AddSource)

	assert.False(t, cfg.Muxer.DropNVOPs)
	assert.Empty(t, cfg.Muxer.TrackOrder)
	assert.Equal(t, "UTF-8", cfg.Muxer.Charset)
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "debug"
  format: "text"

muxer:
  drop_nvops: true
  charset: "ISO-8859-1"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.Muxer.DropNVOPs)
	assert.Equal(t, "ISO-8859-1", cfg.Muxer.Charset)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MKVMERGE_LOGGING_LEVEL", "warn")
	t.Setenv("MKVMERGE_MUXER_CHARSET", "KOI8-R")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "KOI8-R", cfg.Muxer.Charset)
}

func TestValidateRejectsUnknownLevel(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "deafening", Format: "json"}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "info", Format: "xml"}}
	assert.Error(t, cfg.Validate())
}
