package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("LEDGER_RPC_URL", "http://localhost:8545")
	t.Setenv("LEDGER_CONTRACT_ADDRESS", "0x5FbDB2315678afecb367f032d93F642f64180aa3")
	t.Setenv("LEDGER_PRIVATE_KEY", "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.Ledger.Timeout)
	assert.Equal(t, int64(31337), cfg.Ledger.ChainID)
	assert.NotContains(t, cfg.Ledger.PrivateKeyHex, "0x")
	assert.True(t, cfg.Ledger.QueryRetryEnabled)
	assert.Equal(t, 5, cfg.Ledger.BreakerFailureThreshold)
	assert.Equal(t, 2, cfg.Ledger.BreakerSuccessThreshold)
	assert.Equal(t, 24*time.Hour, cfg.Redis.ResolutionTTL)
	assert.Equal(t, RateLimitConfig{Window: time.Minute, IssuePerCaller: 30, ScanPerCaller: 20}, cfg.RateLimit)
	assert.True(t, cfg.UsesDefaultSigningKey())
}

func TestFromEnv_ParsesOverrides(t *testing.T) {
	t.Setenv("LEDGER_TIMEOUT", "15s")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("LEDGER_QUERY_RETRY", "false")
	t.Setenv("PUBLIC_BASE_URL", "https://warranty.example.com/")
	t.Setenv("RATE_LIMIT_SCAN", "0")
	t.Setenv("RATE_LIMIT_DISABLED", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Ledger.Timeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Ledger.QueryRetryEnabled)
	assert.Equal(t, "https://warranty.example.com", cfg.Server.PublicBaseURL)
	assert.Equal(t, 0, cfg.RateLimit.ScanPerCaller)
	assert.True(t, cfg.RateLimit.Disabled)
}

func TestFromEnv_RejectsMalformedValues(t *testing.T) {
	t.Setenv("LEDGER_TIMEOUT", "soon")
	t.Setenv("REDIS_POOL_SIZE", "many")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEDGER_TIMEOUT")
	assert.Contains(t, err.Error(), "REDIS_POOL_SIZE")
}

func TestValidate_RequiresLedger(t *testing.T) {
	err := Config{Server: Server{JWTSigningKey: "k"}, Ledger: LedgerConfig{Timeout: time.Second}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEDGER_RPC_URL")
	assert.Contains(t, err.Error(), "LEDGER_CONTRACT_ADDRESS")
	assert.Contains(t, err.Error(), "LEDGER_PRIVATE_KEY")
}
