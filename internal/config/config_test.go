package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "search-service", cfg.Service.Name)
	assert.Equal(t, "dev", cfg.Service.Environment)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "http://localhost:9200", cfg.OpenSearch.URL)
	assert.Equal(t, "search", cfg.OpenSearch.IndexPrefix)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.Postgres.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SEARCH_HTTP_ADDR", ":9999")
	t.Setenv("SEARCH_OPENSEARCH_INDEX_PREFIX", "edu")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, "edu", cfg.OpenSearch.IndexPrefix)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsBrokenConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Postgres.Enabled = true
	cfg.Postgres.URL = ""
	assert.Error(t, cfg.Validate())

	cfg, err = Load("")
	require.NoError(t, err)
	cfg.OpenSearch.URL = ""
	assert.Error(t, cfg.Validate())
}
