package bootstrap

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	appServices "github.com/yigit/examalloc/internal/app/services"
	"github.com/yigit/examalloc/internal/config"
)

// idleStore is never reached by the endpoints exercised here
type idleStore struct {
	appServices.AllocationStore
}

func testConfig(t *testing.T, metricsEnabled bool) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "metrics:\n  enabled: false\n"
	if metricsEnabled {
		content = "metrics:\n  enabled: true\n  path: /internal/metrics\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	for _, key := range []string{"METRICS_ENABLED", "METRICS_PATH"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	return cfg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestBuildDependencies(t *testing.T) {
	lgr := zerolog.New(io.Discard)

	t.Run("requires a store", func(t *testing.T) {
		_, err := BuildDependencies(testConfig(t, false), nil, lgr)
		require.Error(t, err)
	})

	t.Run("metrics enabled", func(t *testing.T) {
		cfg := testConfig(t, true)
		deps, err := BuildDependencies(cfg, idleStore{}, lgr)
		require.NoError(t, err)
		require.NotNil(t, deps.Registry)
		require.False(t, deps.Snapshots.Available())

		router := SetupRouter(cfg, deps, lgr)

		rec := get(t, router, "/internal/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "go_goroutines")

		rec = get(t, router, "/api/v1/health")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

		rec = get(t, router, "/api/v1/allocation/undo")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"available":false`)
	})

	t.Run("metrics disabled", func(t *testing.T) {
		cfg := testConfig(t, false)
		deps, err := BuildDependencies(cfg, idleStore{}, lgr)
		require.NoError(t, err)
		require.Nil(t, deps.Registry)

		router := SetupRouter(cfg, deps, lgr)
		require.Equal(t, http.StatusNotFound, get(t, router, "/metrics").Code)
	})
}
