package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedant281104/AgriShield/internal/config"
	"github.com/vedant281104/AgriShield/internal/ensemble"
	"github.com/vedant281104/AgriShield/internal/inference"
)

func writeLinearModel(t *testing.T, dir, name string, outputs int) string {
	t.Helper()
	weights := make([][]float32, outputs)
	for i := range weights {
		weights[i] = []float32{float32(i) / 10, 0, 0}
	}
	b, err := json.Marshal(map[string]any{
		"format":  inference.LinearFormat,
		"name":    name,
		"grid":    1,
		"weights": weights,
		"bias":    make([]float32, outputs),
	})
	require.NoError(t, err)

	path := filepath.Join(dir, name+".json")
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func testConfig(t *testing.T, outputs int) *config.Config {
	t.Helper()
	dir := t.TempDir()

	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.DatabaseDSN = "sqlite://" + filepath.Join(dir, "data", "users.db")
	c.DigestAlgorithm = "sha256"
	c.PrimaryModelURI = writeLinearModel(t, dir, "m2", outputs)
	c.SecondaryModelURI = "file://" + writeLinearModel(t, dir, "m3", outputs)
	c.LogLevel = "error"
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_RunAndStop(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(t, 14))
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- app.Run(runCtx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}

	assert.NoError(t, app.Close(), "second Close is a no-op")
}

func TestNewApp_ModelShapeMismatchAbortsStartup(t *testing.T) {
	_, err := NewApp(context.Background(), testConfig(t, 3))
	require.Error(t, err)
	assert.True(t, ensemble.IsConfigurationFault(err))
}

func TestNewApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"bad log backend", func(c *config.Config) { c.LogBackend = "zerolog" }},
		{"unknown digest", func(c *config.Config) { c.DigestAlgorithm = "md5" }},
		{"unsupported dsn", func(c *config.Config) { c.DatabaseDSN = "mysql://x" }},
		{"missing model", func(c *config.Config) { c.PrimaryModelURI = filepath.Join(t.TempDir(), "nope.json") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig(t, 14)
			tt.modify(c)
			_, err := NewApp(context.Background(), c)
			assert.Error(t, err)
		})
	}
}

func TestRun_ServerErrorIsReturned(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t, 14))
	require.NoError(t, err)

	app.config.HTTPAddr = "127.0.0.1:99999"
	app.runServer = func(ctx context.Context) error {
		return app.http.Run(ctx, app.config.HTTPAddr)
	}

	assert.Error(t, app.Run(context.Background()))
}
