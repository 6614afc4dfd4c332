package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
)

func TestVendorKey(t *testing.T) {
	assert.Equal(t, "menahub:vendor:gid://shopify/Product/1", vendorKey("gid://shopify/Product/1"))
}

func TestNopVendorCache(t *testing.T) {
	c := NewNopVendorCache()
	require.NoError(t, c.Set(context.Background(), "P1", domain.VendorMetadata{VendorID: "v"}))
	_, ok, err := c.Get(context.Background(), "P1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisVendorCache_UnreachableServerSurfacesError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	c := NewRedisVendorCache(client, time.Minute, zap.NewNop())

	_, ok, err := c.Get(context.Background(), "P1")
	assert.Error(t, err)
	assert.False(t, ok)
}
