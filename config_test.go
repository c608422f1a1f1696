package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "SESSION_TTL", "DAILY_SALT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "local_dev_salt", cfg.DailySalt)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("CATALOG_DB", "./data/catalog.db")
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "./data/catalog.db", cfg.CatalogDB)

	t.Setenv("SESSION_TTL", "soon")
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestOpenCatalog(t *testing.T) {
	ctx := context.Background()

	embedded, err := openCatalog(ctx, Config{})
	require.NoError(t, err)
	list, err := embedded.List(ctx)
	require.NoError(t, err)

	mirrored, err := openCatalog(ctx, Config{CatalogDB: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	fromDB, err := mirrored.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, list, fromDB)
}
