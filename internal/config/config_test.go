package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.True(t, cfg.AuthEnabled)
	require.Equal(t, SensorModePush, cfg.SensorMode)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.False(t, cfg.PublishSessions)
	require.Equal(t, 64, cfg.PublishBuffer)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestLoadReadsDotEnvWithoutOverridingEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SENSOR_MODE=kafka\nKAFKA_BROKERS=a:1, b:2 ,\nPUBLISH_BUFFER=8\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("PUBLISH_BUFFER", "16")
	t.Setenv("SENSOR_MODE", "")
	t.Setenv("KAFKA_BROKERS", "")
	os.Unsetenv("SENSOR_MODE")
	os.Unsetenv("KAFKA_BROKERS")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, SensorModeKafka, cfg.SensorMode)
	require.Equal(t, []string{"a:1", "b:2"}, cfg.KafkaBrokers)
	require.Equal(t, 16, cfg.PublishBuffer)
}

func TestLoadRejectsUnknownSensorMode(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SENSOR_MODE", "bluetooth")

	_, err := Load()
	require.Error(t, err)
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_BOOL", "maybe")
	require.Equal(t, 3, getIntEnv("X_INT", 3))
	require.Equal(t, time.Second, getDurationEnv("X_DUR", time.Second))
	require.True(t, getBoolEnv("X_BOOL", true))
}
