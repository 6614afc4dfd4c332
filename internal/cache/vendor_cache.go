package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
)

// VendorCache stores product vendor metadata looked up from the platform
type VendorCache interface {
	Get(ctx context.Context, productID string) (domain.VendorMetadata, bool, error)
	Set(ctx context.Context, productID string, meta domain.VendorMetadata) error
}

type redisVendorCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisVendorCache creates a Redis-backed vendor cache
func NewRedisVendorCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) VendorCache {
	return &redisVendorCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// NewRedisClient builds a client and checks the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func vendorKey(productID string) string {
	return fmt.Sprintf("menahub:vendor:%s", productID)
}

func (c *redisVendorCache) Get(ctx context.Context, productID string) (domain.VendorMetadata, bool, error) {
	raw, err := c.client.Get(ctx, vendorKey(productID)).Bytes()
	if err == redis.Nil {
		return domain.VendorMetadata{}, false, nil
	}
	if err != nil {
		return domain.VendorMetadata{}, false, err
	}

	var meta domain.VendorMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		c.logger.Warn("Dropping unreadable vendor cache entry", zap.String("product_id", productID), zap.Error(err))
		return domain.VendorMetadata{}, false, nil
	}
	return meta, true, nil
}

func (c *redisVendorCache) Set(ctx context.Context, productID string, meta domain.VendorMetadata) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, vendorKey(productID), payload, c.ttl).Err()
}

type nopVendorCache struct{}

// NewNopVendorCache returns a cache that never hits, used when Redis is not configured
func NewNopVendorCache() VendorCache {
	return nopVendorCache{}
}

func (nopVendorCache) Get(context.Context, string) (domain.VendorMetadata, bool, error) {
	return domain.VendorMetadata{}, false, nil
}

func (nopVendorCache) Set(context.Context, string, domain.VendorMetadata) error {
	return nil
}
