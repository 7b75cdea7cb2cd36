package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meannnn/MindM/internal/config"
	"github.com/meannnn/MindM/internal/platform/logger"
	"github.com/meannnn/MindM/internal/platform/tempfiles"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	cfg := config.Default()
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Storage.UploadDir = filepath.Join(dir, "uploads")
	cfg.Storage.OutputDir = filepath.Join(dir, "outputs")
	cfg.Storage.TempDir = filepath.Join(dir, "tmp")
	cfg.Storage.SweepAge = config.Duration{}
	cfg.Templates.Dir = filepath.Join(dir, "templates")
	cfg.LLM.APIKey = ""
	return cfg
}

func TestNewWithoutAPIKeyDisablesGeneration(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, logger.Nop(), "test")
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.Clients.LLM)
	assert.Nil(t, a.Clients.Generator())
	assert.Equal(t, "standard", a.Templates.DefaultID())

	for _, info := range a.Templates.List() {
		p, err := a.Templates.Path(info.ID)
		require.NoError(t, err)
		assert.FileExists(t, p)
	}

	w := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestNewWiresConfiguredClient(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.APIKey = "sk-test"
	a, err := New(context.Background(), cfg, logger.Nop(), "test")
	require.NoError(t, err)
	t.Cleanup(a.Close)

	require.NotNil(t, a.Clients.LLM)
	assert.NotNil(t, a.Clients.Generator())
}

func TestNewSweepsLeftoverTempFiles(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Storage.TempDir, 0o755))
	stale := filepath.Join(cfg.Storage.TempDir, tempfiles.DefaultPrefix+"old.docx")
	other := filepath.Join(cfg.Storage.TempDir, "keep.txt")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	a, err := New(context.Background(), cfg, logger.Nop(), "test")
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, other)
}

func TestRunReturnsWhenContextEnds(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, logger.Nop(), "test")
	require.NoError(t, err)
	t.Cleanup(a.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCloseRemovesRegisteredTempFiles(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, logger.Nop(), "test")
	require.NoError(t, err)

	p, err := a.Temp.Path(".xlsx")
	require.NoError(t, err)
	assert.FileExists(t, p)

	a.Close()
	assert.NoFileExists(t, p)
}

func TestRetryPolicyFromConfig(t *testing.T) {
	p := retryPolicy(config.RetryConfig{
		MaxRetries: 4,
		Backoff:    config.Duration{Duration: 50 * time.Millisecond},
	})
	assert.Equal(t, 4, p.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, p.Backoff)
	assert.Equal(t, 10*time.Second, p.MaxBackoff)
}
