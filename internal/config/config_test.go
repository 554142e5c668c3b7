package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	require.Equal(t, 2, cfg.Allocation.TargetExaminers)
	require.Equal(t, 25, cfg.Allocation.DefaultCapacity)
	require.Equal(t, 1, cfg.Allocation.MinCapacity)
	require.Equal(t, 100, cfg.Allocation.MaxCapacity)
	require.True(t, cfg.Allocation.SerializeResets)
	require.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
allocation:
  default_capacity: 30
  max_capacity: 40
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("ALLOC_TARGET_EXAMINERS", "3")
	t.Setenv("ALLOC_SERIALIZE_RESETS", "false")

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 30, cfg.Allocation.DefaultCapacity)
	require.Equal(t, 40, cfg.Allocation.MaxCapacity)
	require.Equal(t, 3, cfg.Allocation.TargetExaminers)
	require.False(t, cfg.Allocation.SerializeResets)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.ElementsMatch(t, []string{"ALLOC_TARGET_EXAMINERS", "ALLOC_SERIALIZE_RESETS"}, cfg.EnvOverrides)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{"bad integer", map[string]string{"ALLOC_MAX_CAPACITY": "lots"}, "invalid integer format"},
		{"zero target", map[string]string{"ALLOC_TARGET_EXAMINERS": "0"}, "target examiners"},
		{"max below min", map[string]string{"ALLOC_MIN_CAPACITY": "10", "ALLOC_MAX_CAPACITY": "5"}, "below min capacity"},
		{"default outside range", map[string]string{"ALLOC_DEFAULT_CAPACITY": "500"}, "outside"},
		{"relative metrics path", map[string]string{"METRICS_PATH": "metrics"}, "metrics path"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}
