package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "APP_ENV", "DB_DRIVER", "DATABASE_URL", "SQLITE_PATH",
		"CACHE_TTL", "CACHE_MAX_ENTRIES",
		"DATASET_S3_ENDPOINT", "DATASET_S3_REGION", "DATASET_S3_ACCESS_KEY",
		"DATASET_S3_SECRET_KEY", "DATASET_S3_BUCKET", "DATASET_S3_OBJECT", "DATASET_S3_USE_SSL",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv(":3000")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.True(t, cfg.IsLocal())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/data.db", cfg.Database.SQLitePath)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 256, cfg.Cache.MaxEntries)
	assert.False(t, cfg.Dataset.Enabled())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/churn")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("CACHE_MAX_ENTRIES", "32")

	cfg, err := FromEnv(":3000")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.False(t, cfg.IsLocal())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/churn", cfg.Database.URL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 32, cfg.Cache.MaxEntries)
}

func TestFromEnvRejectsPostgresWithoutURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")

	_, err := FromEnv(":3000")
	assert.Error(t, err)
}

func TestFromEnvRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "mysql")

	_, err := FromEnv(":3000")
	assert.Error(t, err)
}

func TestDatasetConfig(t *testing.T) {
	t.Run("local endpoint gets compose credentials", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATASET_S3_ENDPOINT", "minio:9000")

		cfg, err := FromEnv(":3000")
		require.NoError(t, err)
		assert.True(t, cfg.Dataset.Enabled())
		assert.False(t, cfg.Dataset.UseSSL)
		assert.Equal(t, "sdkchurn-datasets", cfg.Dataset.Bucket)
		assert.Equal(t, "data.db", cfg.Dataset.Object)
	})

	t.Run("remote defaults to ssl", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("DATASET_S3_ENDPOINT", "s3.amazonaws.com")

		cfg, err := FromEnv(":3000")
		require.NoError(t, err)
		assert.True(t, cfg.Dataset.UseSSL)
		assert.False(t, cfg.Dataset.Enabled(), "credentials are not defaulted outside local")
	})
}
