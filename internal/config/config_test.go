package config_test

import (
	"os"
	"testing"
	"time"

	"taskapi/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "CORS_ORIGIN", "DB_DRIVER", "DB_PATH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("DB_DEBUG", "not-a-bool")

	cfg := config.Load()

	assert.Equal(t, "3001", cfg.ServerPort)
	assert.Equal(t, "http://localhost:3000", cfg.CORSOrigin)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "tasks.db", cfg.DBPath)
	assert.False(t, cfg.DBDebug)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGIN", "https://tasks.example.com")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/tasks.db")
	t.Setenv("DB_DEBUG", "true")

	cfg := config.Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "https://tasks.example.com", cfg.CORSOrigin)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/tasks.db", cfg.DBPath)
	assert.True(t, cfg.DBDebug)
}

func TestLoadWeb(t *testing.T) {
	t.Setenv("API_URL", "http://api:3001")
	t.Setenv("QUERY_STALE_TIME", "30s")
	t.Setenv("QUERY_GC_TIME", "bogus")
	t.Setenv("QUERY_RETRY", "0")

	cfg := config.LoadWeb()

	assert.Equal(t, "http://api:3001", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.StaleTime)
	assert.Equal(t, 10*time.Minute, cfg.GCTime)
	assert.Equal(t, 0, cfg.Retry)
}
