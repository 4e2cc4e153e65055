package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prisonersearch/internal/platform/config"
)

func TestOptionsApplyConfiguredOverrides(t *testing.T) {
	opts, err := options(config.RedisConfig{
		URL:          "redis://queue.local:6380/2",
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "queue.local:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, clientName, opts.ClientName)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)
}

func TestOptionsKeepDefaultsForZeroValues(t *testing.T) {
	parsed, err := options(config.RedisConfig{URL: "redis://queue.local:6379"})
	require.NoError(t, err)

	assert.Zero(t, parsed.PoolSize)
	assert.Zero(t, parsed.WriteTimeout)
}

func TestOptionsRejectBadURL(t *testing.T) {
	_, err := options(config.RedisConfig{URL: "http://queue.local"})
	assert.Error(t, err)
}

func TestNewWithoutURLSelectsInMemory(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}
