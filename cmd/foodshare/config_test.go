package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("FOODSHARE_DATABASE_URL", "postgres://localhost/foodshare")
	t.Setenv("FOODSHARE_SERVER_PORT", "9090")

	c, err := loadConfig("FOODSHARE")
	require.NoError(t, err)

	assert.Equal(t, uint(9090), c.ServerPort)
	assert.Equal(t, "filesystem", c.StorageDriver)
	assert.Equal(t, 20, c.AuthRateLimitPerMin)
	assert.True(t, c.IsDevelopment())
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	t.Setenv("FOODSHARE_DATABASE_URL", "")

	_, err := loadConfig("FOODSHARE")
	assert.EqualError(t, err, "set FOODSHARE_DATABASE_URL")
}

func TestLoadConfigStorageDriver(t *testing.T) {
	t.Setenv("FOODSHARE_DATABASE_URL", "postgres://localhost/foodshare")

	t.Setenv("FOODSHARE_STORAGE_DRIVER", "s3")
	_, err := loadConfig("FOODSHARE")
	assert.ErrorContains(t, err, "FOODSHARE_S3_BUCKET_NAME")

	t.Setenv("FOODSHARE_S3_BUCKET_NAME", "photos")
	c, err := loadConfig("FOODSHARE")
	require.NoError(t, err)
	assert.Equal(t, "photos", c.S3BucketName)

	t.Setenv("FOODSHARE_STORAGE_DRIVER", "ftp")
	_, err = loadConfig("FOODSHARE")
	assert.Error(t, err)
}
