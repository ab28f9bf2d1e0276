package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceEnvVars(t *testing.T) {
	t.Setenv("PTZ_GATEWAY", "10.0.0.5:5060")

	assert.Equal(t, "address: 10.0.0.5:5060", ReplaceEnvVars("address: ${PTZ_GATEWAY}"))
	assert.Equal(t, "proto: udp", ReplaceEnvVars("proto: ${PTZ_PROTO_UNSET:udp}"))
	assert.Equal(t, "x: ${PTZ_NOPE}", ReplaceEnvVars("x: ${PTZ_NOPE}"))
}

func TestInitAndLoadConfig(t *testing.T) {
	t.Setenv("PTZ_LISTEN_TEST", ":9090")

	path := filepath.Join(t.TempDir(), "ptz.yaml")
	data := []byte(`
log:
  level: debug
  output: none
  gateway: warn
api:
  listen: ${PTZ_LISTEN_TEST}
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	Init(path)
	assert.Equal(t, path, ConfigPath)

	var cfg struct {
		API struct {
			Listen string `yaml:"listen"`
		} `yaml:"api"`
	}
	LoadConfig(&cfg)
	assert.Equal(t, ":9090", cfg.API.Listen)

	assert.Equal(t, zerolog.DebugLevel, Logger.GetLevel())
	assert.Equal(t, zerolog.WarnLevel, GetLogger("gateway").GetLevel())
	assert.Equal(t, zerolog.DebugLevel, GetLogger("api").GetLevel())
}

func TestInitInlineConfig(t *testing.T) {
	Init(`{"api": {"listen": ":7070"}, "log": {"output": "none"}}`)
	assert.Empty(t, ConfigPath)

	var cfg struct {
		API struct {
			Listen string `yaml:"listen"`
		} `yaml:"api"`
	}
	LoadConfig(&cfg)
	assert.Equal(t, ":7070", cfg.API.Listen)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("PTZ_SET", "yes")
	assert.Equal(t, "yes", GetEnv("PTZ_SET", "no"))
	assert.Equal(t, "no", GetEnv("PTZ_UNSET_KEY", "no"))
}
