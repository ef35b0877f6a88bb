package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/internal/device"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tensorcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	_, ok := cfg.PreferredKind()
	assert.False(t, ok)
	assert.Empty(t, cfg.DisabledKinds())
	assert.Equal(t, logrus.InfoLevel, cfg.Level())
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
device: webgpu
disabled: [cuda]
artifacts_dir: /opt/tensorcore
log_level: debug
parallel:
  enabled: false
  workers: 3
  min_chunk: 128
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	k, ok := cfg.PreferredKind()
	assert.True(t, ok)
	assert.Equal(t, device.WebGPU, k)
	assert.Equal(t, []device.Kind{device.CUDA}, cfg.DisabledKinds())
	assert.Equal(t, "/opt/tensorcore", cfg.ArtifactsDir)
	assert.Equal(t, logrus.DebugLevel, cfg.Level())

	par := cfg.ParallelConfig()
	assert.False(t, par.Enabled)
	assert.Equal(t, 3, par.NumWorkers)
	assert.Equal(t, 128, par.MinChunkSize)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "device: [not, a, string"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "device: tpu"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "log_level: loud"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDevice:    " metal ",
		EnvDisable:   "cuda, webgpu,,",
		EnvArtifacts: "/tmp/kernels",
		EnvLogLevel:  "warn",
		EnvWorkers:   "2",
	}
	cfg := Default()
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "metal", cfg.Device)
	assert.Equal(t, []string{"cuda", "webgpu"}, cfg.Disabled)
	assert.Equal(t, "/tmp/kernels", cfg.ArtifactsDir)
	assert.Equal(t, logrus.WarnLevel, cfg.Level())
	assert.Equal(t, 2, cfg.ParallelConfig().NumWorkers)
}

func TestFromEnv(t *testing.T) {
	path := writeFile(t, "device: cuda\nlog_level: error\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDevice, "cpu")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "cpu", cfg.Device, "environment overrides the file")
	assert.Equal(t, logrus.ErrorLevel, cfg.Level())
}

func TestFromEnvInvalidDevice(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvDevice, "quantum")

	_, err := FromEnv()
	assert.Error(t, err)
}
