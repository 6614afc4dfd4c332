package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresShopifyCredentials(t *testing.T) {
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPIFY_SHOP_DOMAIN")
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("SHOPIFY_SHOP_DOMAIN", " shop.myshopify.com ")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_x")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("VENDOR_CACHE_TTL", "15m")
	t.Setenv("RECONCILE_RESURRECT_DELETED", "true")
	t.Setenv("DB_NAME", "orders_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "shop.myshopify.com", cfg.Shopify.ShopDomain)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.Redis.VendorCacheTTL)
	assert.True(t, cfg.Reconcile.ResurrectDeleted)
	assert.Equal(t, "orders_test", cfg.Database.DBName)
	assert.Contains(t, cfg.Database.URL(), "/orders_test?sslmode=")
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "shop")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "tok")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "  ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "shop")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "tok")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("VENDOR_CACHE_TTL", "forever")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadShopify_IgnoresServerSettings(t *testing.T) {
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "shop.myshopify.com")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "tok")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadShopify()
	require.NoError(t, err)
	assert.Equal(t, "shop.myshopify.com", cfg.ShopDomain)

	t.Setenv("SHOPIFY_ACCESS_TOKEN", "")
	_, err = LoadShopify()
	assert.Error(t, err)
}
