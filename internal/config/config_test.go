package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/philipparndt/gomesh/pkg/meshio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.False(t, cfg.Conversion.ASCII())
	assert.Equal(t, int64(512<<20), cfg.Cache.MaxBytes)
	assert.Equal(t, []meshio.Format{meshio.FormatSTL, meshio.FormatOBJ, meshio.FormatPLY}, cfg.AcceptedFormats())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "gomesh.yaml", `
server:
  port: 9000
  max_upload_bytes: 1024
conversion:
  encoding: ascii
  formats: [stl, obj]
cache:
  driver: memory
  ttl: 5m
log:
  level: debug
  format: json
watch:
  debounce: 250ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep defaults")
	assert.True(t, cfg.Conversion.ASCII())
	assert.Equal(t, []meshio.Format{meshio.FormatSTL, meshio.FormatOBJ}, cfg.AcceptedFormats())
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "gomesh.toml", `
[server]
host = "127.0.0.1"
port = 8181

[cache]
driver = "redis"
ttl = "1h"

[cache.redis]
addr = "cache:6379"
prefix = "mesh:"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8181", cfg.Server.Addr())
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "mesh:", cfg.Cache.Redis.Prefix)
	assert.Equal(t, 10, cfg.Cache.Redis.PoolSize)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown extension", "gomesh.ini", "port=1"},
		{"bad yaml", "gomesh.yaml", "server: [1, 2"},
		{"bad toml", "gomesh.toml", "[server\nport = 1"},
		{"invalid port", "gomesh.yaml", "server:\n  port: 70000\n"},
		{"invalid encoding", "gomesh.yaml", "conversion:\n  encoding: utf8\n"},
		{"invalid format", "gomesh.yaml", "conversion:\n  formats: [stl, step]\n"},
		{"no formats", "gomesh.yaml", "conversion:\n  formats: []\n"},
		{"invalid cache driver", "gomesh.yaml", "cache:\n  driver: memcached\n"},
		{"negative cache budget", "gomesh.yaml", "cache:\n  max_bytes: -1\n"},
		{"invalid log format", "gomesh.yaml", "log:\n  format: xml\n"},
		{"invalid log level", "gomesh.yaml", "log:\n  level: loud\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GOMESH_SERVER_PORT", "9999")
	t.Setenv("GOMESH_ENCODING", "ascii")
	t.Setenv("GOMESH_REDIS_URL", "redis://redis.internal:6380")
	t.Setenv("GOMESH_CACHE_TTL", "90s")
	t.Setenv("GOMESH_LOG_LEVEL", "warn")

	cfg, err := Load(writeFile(t, "gomesh.yaml", "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port, "environment wins over the file")
	assert.True(t, cfg.Conversion.ASCII())
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "redis.internal:6380", cfg.Cache.Redis.Addr)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestEnvOverrideErrors(t *testing.T) {
	for name, value := range map[string]string{
		"GOMESH_SERVER_PORT":      "eighty",
		"GOMESH_CACHE_TTL":        "soon",
		"GOMESH_MAX_UPLOAD_BYTES": "1MB",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
