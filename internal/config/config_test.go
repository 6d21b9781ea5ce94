package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "INR", cfg.Store.Currency)
	assert.Equal(t, int64(599), cfg.Store.FreeShippingThreshold)
	assert.Equal(t, int64(50), cfg.Store.ShippingFee)
	assert.Equal(t, "#503e28", cfg.Store.ThemeColor)
	assert.Equal(t, 2*time.Second, cfg.Store.AddedToCartTTL)
	assert.Equal(t, "orders", cfg.Mongo.OrderCollection)
	assert.False(t, cfg.KafkaEnabled())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("STORE_SHIPPING_FEE", "75")
	t.Setenv("CHECKOUT_REQUIRE_STATE", "false")
	t.Setenv("CHECKOUT_TTL", "45m")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, int64(75), cfg.Store.ShippingFee)
	assert.False(t, cfg.Store.RequireState)
	assert.Equal(t, 45*time.Minute, cfg.Store.CheckoutTTL)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("STORE_SHIPPING_FEE", "fifty")
	t.Setenv("CART_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(50), cfg.Store.ShippingFee)
	assert.Equal(t, 24*time.Hour, cfg.Store.CartTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }, "JWT_SECRET"},
		{"no mongo", func(c *Config) { c.Mongo.URI = "" }, "MONGO_URI"},
		{"no leveldb", func(c *Config) { c.LevelDB.Path = "" }, "LEVELDB_PATH"},
		{"zero threshold", func(c *Config) { c.Store.FreeShippingThreshold = 0 }, "STORE_FREE_SHIPPING_THRESHOLD"},
		{"negative fee", func(c *Config) { c.Store.ShippingFee = -1 }, "STORE_SHIPPING_FEE"},
		{"bad currency", func(c *Config) { c.Store.Currency = "RUPEE" }, "STORE_CURRENCY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "zelie", Password: "pw", Name: "shop", SSLMode: "disable",
	}}
	dsn := cfg.GetDatabaseDSN()
	assert.Contains(t, dsn, "host=db")
	assert.Contains(t, dsn, "dbname=shop")
}
