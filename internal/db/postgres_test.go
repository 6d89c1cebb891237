package db

import (
	"testing"

	"foodshare/internal"
	"foodshare/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	c, err := PoolConfig(&types.Config{DatabaseURL: "postgres://app@localhost:5432/foodshare", DBMaxConns: 7})
	require.NoError(t, err)

	assert.Equal(t, int32(7), c.MaxConns)
	assert.Equal(t, internal.SCHEMA_NAME, c.ConnConfig.RuntimeParams["search_path"])
	assert.Equal(t, "foodshare", c.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfigKeepsURLSearchPath(t *testing.T) {
	c, err := PoolConfig(&types.Config{DatabaseURL: "postgres://app@localhost:5432/foodshare?search_path=staging"})
	require.NoError(t, err)

	assert.Equal(t, "staging", c.ConnConfig.RuntimeParams["search_path"])
}

func TestPoolConfigRejectsBadURL(t *testing.T) {
	_, err := PoolConfig(&types.Config{DatabaseURL: "postgres://%zz"})
	assert.Error(t, err)
}
