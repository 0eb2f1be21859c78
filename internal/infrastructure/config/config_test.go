package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "ReelChef", cfg.App.Name)
	assert.Equal(t, int64(19<<20), cfg.Analysis.MaxChunkSize)
	assert.Equal(t, int64(5<<20), cfg.Analysis.OverlapSize)
	assert.Equal(t, 3, cfg.Analysis.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Analysis.InitialRetryDelay)
	assert.Equal(t, 0.85, cfg.Analysis.PreScreenThreshold)
	assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiry)
	assert.Equal(t, "storage.object.finalized", cfg.NATS.FinalizeSubject)
	assert.Equal(t, time.Minute, cfg.Scheduler.StuckCheckInterval)
	// The redis cache appends "analysis:" itself
	assert.Equal(t, "reelchef:", cfg.Cache.KeyPrefix)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REELCHEF_SERVER_PORT", "9191")
	t.Setenv("REELCHEF_AI_API_KEY", "test-key")
	t.Setenv("REELCHEF_ANALYSIS_MAX_RETRIES", "5")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.AI.APIKey)
	assert.Equal(t, 5, cfg.Analysis.MaxRetries)
	assert.Equal(t, "0.0.0.0:9191", cfg.ServerAddr())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  environment: staging
database:
  driver: postgres
  host: db.internal
storage:
  provider: minio
  bucket: uploads
analysis:
  max_chunk_size: 10485760
  overlap_size: 1048576
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Contains(t, cfg.GetDSN(), "host=db.internal")
	assert.Equal(t, "minio", cfg.Storage.Provider)
	assert.Equal(t, int64(10<<20), cfg.Analysis.MaxChunkSize)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"bad cache", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"overlap too large", func(c *Config) { c.Analysis.OverlapSize = c.Analysis.MaxChunkSize }, "analysis.overlap_size"},
		{"threshold out of range", func(c *Config) { c.Analysis.PreScreenThreshold = 1.5 }, "prescreen_threshold"},
		{"production without key", func(c *Config) { c.App.Environment = "production" }, "ai.api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
