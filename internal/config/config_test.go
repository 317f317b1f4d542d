package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "ARCHIVE_BACKEND", "LOG_BACKUP_INTERVAL", "LOG_DIR", "CORS_ALLOWED_ORIGINS", "S3_USE_SSL", "NATS_URL"} {
		t.Setenv(k, "")
	}
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_BACKUP_INTERVAL", "1h")
	t.Setenv("LOG_DIR", "logs")
	t.Setenv("CORS_ALLOWED_ORIGINS", "*")
	t.Setenv("S3_USE_SSL", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "", cfg.DB.Driver)
	assert.Equal(t, "", cfg.Archive.Backend)
	assert.Equal(t, time.Hour, cfg.LogBackupInterval)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.NATSURL)
}

func TestFromEnv_Backends(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("ARCHIVE_BACKEND", "s3")
	t.Setenv("S3_ENDPOINT", "localhost:9000")
	t.Setenv("S3_BUCKET", "lake")
	t.Setenv("S3_USE_SSL", "false")
	t.Setenv("LOG_BACKUP_INTERVAL", "90000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.DB.SQLitePath)
	assert.Equal(t, BackendS3, cfg.Archive.Backend)
	assert.False(t, cfg.Archive.S3UseSSL)
	assert.Equal(t, 90*time.Second, cfg.LogBackupInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "Unknown driver", env: map[string]string{"DB_DRIVER": "mongo"}},
		{name: "Unknown backend", env: map[string]string{"ARCHIVE_BACKEND": "ftp"}},
		{name: "GCS without bucket", env: map[string]string{"ARCHIVE_BACKEND": "gcs", "GCS_BUCKET_NAME": ""}},
		{name: "S3 without endpoint", env: map[string]string{"ARCHIVE_BACKEND": "s3", "S3_ENDPOINT": "", "S3_BUCKET": "b"}},
		{name: "Bad interval", env: map[string]string{"LOG_BACKUP_INTERVAL": "soon"}},
		{name: "Zero interval", env: map[string]string{"LOG_BACKUP_INTERVAL": "0"}},
		{name: "Bad bool", env: map[string]string{"S3_USE_SSL": "maybe"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DB_DRIVER", "")
			t.Setenv("ARCHIVE_BACKEND", "")
			t.Setenv("LOG_BACKUP_INTERVAL", "1h")
			t.Setenv("S3_USE_SSL", "true")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.True(t, Error.Has(err))
		})
	}
}

func TestParseInterval(t *testing.T) {
	d, err := ParseInterval("3600000")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	d, err = ParseInterval(" 15m ")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)
}
