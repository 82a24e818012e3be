package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DOCSTORE_STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "licenses", cfg.Documents.Category)
	assert.Equal(t, time.Hour, cfg.Documents.PresignTTL)
	assert.Equal(t, 1000, cfg.Documents.ListPageSize)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "/v1/documents/{owner_id}/{file_name}", cfg.Documents.DisplayURLTemplate)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("DOCSTORE_STORE_DRIVER", "S3")
	t.Setenv("DOCSTORE_CATEGORY", "/policies/")
	t.Setenv("DOCSTORE_PRESIGN_TTL", "15m")
	t.Setenv("DOCSTORE_STORE_USE_SSL", "yes")
	t.Setenv("DOCSTORE_DELETE_BATCH", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverS3, cfg.ObjectStore.Driver)
	assert.Equal(t, "policies", cfg.Documents.Category)
	assert.Equal(t, 15*time.Minute, cfg.Documents.PresignTTL)
	assert.True(t, cfg.ObjectStore.UseSSL)
	assert.Equal(t, 1, cfg.Documents.DeleteBatchSize)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "DOCSTORE_STORE_DRIVER", "gcs"},
		{"reserved category", "DOCSTORE_CATEGORY", "backups"},
		{"nested category", "DOCSTORE_CATEGORY", "a/b"},
		{"page size too large", "DOCSTORE_LIST_PAGE_SIZE", "5000"},
		{"zero batch", "DOCSTORE_DELETE_BATCH", "0"},
		{"zero token ttl", "DOCSTORE_SERVICE_TOKEN_TTL", "0s"},
		{"negative token ttl", "DOCSTORE_SERVICE_TOKEN_TTL", "-1h"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
