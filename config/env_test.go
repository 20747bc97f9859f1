package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/config"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFromLayersFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{"app_port":"9000","db_driver":"postgres","order_strict_transitions":true}`)
	envPath := writeFile(t, dir, ".env", "APP_PORT=9100\nJWT_SECRET=\"s3cret\"\n# comment\n")

	require.NoError(t, config.LoadFrom(jsonPath, envPath))

	assert.Equal(t, "9100", config.AppPort(), ".env wins over app.json")
	assert.Equal(t, "postgres", config.DatabaseDriver())
	assert.Equal(t, "s3cret", config.JWTSecret())
	assert.True(t, config.OrderStrictTransitions())
}

func TestProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "GRPC_PORT=7000\n")
	t.Setenv("GRPC_PORT", "7100")

	require.NoError(t, config.LoadFrom(filepath.Join(dir, "missing.json"), envPath))
	assert.Equal(t, "7100", config.GRPCPort())
}

func TestUnknownDriverFallsBackToSQLite(t *testing.T) {
	require.NoError(t, config.LoadFrom("nope.json", "nope.env"))
	config.Set("DB_DRIVER", "oracle")

	assert.Equal(t, "sqlite", config.DatabaseDriver())
	assert.Equal(t, "storefront.db", config.DatabaseDSN())
}

func TestTypedGetters(t *testing.T) {
	require.NoError(t, config.LoadFrom("nope.json", "nope.env"))
	config.Set("RATE_LIMIT_PER_MINUTE", "abc")
	assert.Equal(t, 200, config.RateLimitPerMinute())

	config.Set("RATE_LIMIT_PER_MINUTE", "50")
	assert.Equal(t, 50, config.RateLimitPerMinute())

	config.Set("FEATURE_X", "yes")
	assert.True(t, config.Bool("FEATURE_X", false))
	assert.False(t, config.Bool("FEATURE_Y", false))

	config.Set("QUEUE_RETRY_INTERVAL", "15m")
	assert.Equal(t, 15*time.Minute, config.Duration("QUEUE_RETRY_INTERVAL", time.Hour))
	config.Set("QUEUE_RETRY_INTERVAL", "-1s")
	assert.Equal(t, time.Hour, config.Duration("QUEUE_RETRY_INTERVAL", time.Hour))
}
