package config

import (
	"testing"
	"time"

	"agrodesk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/agrodesk?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "document-uploads", cfg.Storage.Bucket)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.Equal(t, 15*time.Minute, cfg.Storage.URLExpiry)
	assert.InDelta(t, 0.05, cfg.Stats.Alpha, 1e-12)
	assert.Equal(t, 30, cfg.Dashboard.DefaultDays)
	assert.Equal(t, 5, cfg.Dashboard.TopN)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/agrodesk")
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_S3_PATH_STYLE", "true")
	t.Setenv("STORAGE_PUBLIC_BASE_URL", "https://cdn.example.com/")
	t.Setenv("STATS_ALPHA", "0.01")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("DASHBOARD_DEFAULT_DAYS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Storage.PathStyle)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicBaseURL)
	assert.InDelta(t, 0.01, cfg.Stats.Alpha, 1e-12)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 30, cfg.Dashboard.DefaultDays)
}

func TestLoadRejectsAlphaOutOfRange(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/agrodesk")
	t.Setenv("STATS_ALPHA", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
