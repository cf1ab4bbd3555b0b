package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	Server    Server
	Ledger    LedgerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	PublicBaseURL string
}

// LedgerConfig points at the warranty contract.
type LedgerConfig struct {
	RPCURL          string
	ContractAddress string
	PrivateKeyHex   string
	ChainID         int64
	Timeout         time.Duration

	BreakerFailureThreshold int
	BreakerSuccessThreshold int
	BreakerCooldown         time.Duration

	QueryRetryEnabled bool
	QueryMaxRetries   int
	QueryInitialDelay time.Duration
	QueryMaxDelay     time.Duration
}

// DatabaseConfig selects the Postgres record store. Empty URL means in-memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig enables the resolution cache and durable reconciliation journal.
// Empty URL means both stay in-process.
type RedisConfig struct {
	URL           string
	PoolSize      int
	MinIdleConns  int
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	ResolutionTTL time.Duration
}

// KafkaConfig enables the Kafka audit sink. Empty Brokers means in-memory audit.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// RateLimitConfig bounds issuance and ledger-scanning lookups per caller per
// window. A zero limit disables that class.
type RateLimitConfig struct {
	Disabled       bool
	Window         time.Duration
	IssuePerCaller int
	ScanPerCaller  int
}

const defaultJWTSigningKey = "dev-secret-key-change-in-production"

// FromEnv loads .env when present, then reads the environment.
func FromEnv() (Config, error) {
	// a missing .env file is normal outside local development
	_ = godotenv.Load()

	cfg := Config{
		Server: Server{
			Addr:          getString("WARRANTY_ADDR", ":8080"),
			JWTSigningKey: getString("JWT_SIGNING_KEY", defaultJWTSigningKey),
			JWTIssuer:     getString("JWT_ISSUER", "warranty"),
			JWTAudience:   getString("JWT_AUDIENCE", "warranty-api"),
			PublicBaseURL: strings.TrimSuffix(getString("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		},
		Ledger: LedgerConfig{
			RPCURL:                  os.Getenv("LEDGER_RPC_URL"),
			ContractAddress:         os.Getenv("LEDGER_CONTRACT_ADDRESS"),
			PrivateKeyHex:           strings.TrimPrefix(os.Getenv("LEDGER_PRIVATE_KEY"), "0x"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Kafka: KafkaConfig{
			AuditTopic: getString("KAFKA_AUDIT_TOPIC", "warranty.audit"),
		},
		LogLevel: getString("LOG_LEVEL", "info"),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	cfg.Ledger.ChainID, err = getInt64("LEDGER_CHAIN_ID", 31337)
	collect(err)
	cfg.Ledger.Timeout, err = getDuration("LEDGER_TIMEOUT", 60*time.Second)
	collect(err)
	cfg.Ledger.BreakerFailureThreshold, err = getInt("LEDGER_BREAKER_FAILURES", 5)
	collect(err)
	cfg.Ledger.BreakerSuccessThreshold, err = getInt("LEDGER_BREAKER_SUCCESSES", 2)
	collect(err)
	cfg.Ledger.BreakerCooldown, err = getDuration("LEDGER_BREAKER_COOLDOWN", 30*time.Second)
	collect(err)
	cfg.Ledger.QueryRetryEnabled = getString("LEDGER_QUERY_RETRY", "true") == "true"
	cfg.Ledger.QueryMaxRetries, err = getInt("LEDGER_QUERY_MAX_RETRIES", 3)
	collect(err)
	cfg.Ledger.QueryInitialDelay, err = getDuration("LEDGER_QUERY_INITIAL_DELAY", 200*time.Millisecond)
	collect(err)
	cfg.Ledger.QueryMaxDelay, err = getDuration("LEDGER_QUERY_MAX_DELAY", 5*time.Second)
	collect(err)

	cfg.Database.MaxOpenConns, err = getInt("DATABASE_MAX_OPEN_CONNS", 20)
	collect(err)
	cfg.Database.MaxIdleConns, err = getInt("DATABASE_MAX_IDLE_CONNS", 5)
	collect(err)
	cfg.Database.ConnMaxLifetime, err = getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute)
	collect(err)

	cfg.Redis.PoolSize, err = getInt("REDIS_POOL_SIZE", 10)
	collect(err)
	cfg.Redis.MinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", 2)
	collect(err)
	cfg.Redis.DialTimeout, err = getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	collect(err)
	cfg.Redis.ReadTimeout, err = getDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	collect(err)
	cfg.Redis.WriteTimeout, err = getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	collect(err)
	cfg.Redis.ResolutionTTL, err = getDuration("REDIS_RESOLUTION_TTL", 24*time.Hour)
	collect(err)

	cfg.RateLimit.Disabled = getString("RATE_LIMIT_DISABLED", "false") == "true"
	cfg.RateLimit.Window, err = getDuration("RATE_LIMIT_WINDOW", time.Minute)
	collect(err)
	cfg.RateLimit.IssuePerCaller, err = getInt("RATE_LIMIT_ISSUE", 30)
	collect(err)
	cfg.RateLimit.ScanPerCaller, err = getInt("RATE_LIMIT_SCAN", 20)
	collect(err)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate reports missing or inconsistent required values.
func (c Config) Validate() error {
	var errs []error
	if c.Ledger.RPCURL == "" {
		errs = append(errs, errors.New("LEDGER_RPC_URL is required"))
	}
	if c.Ledger.ContractAddress == "" {
		errs = append(errs, errors.New("LEDGER_CONTRACT_ADDRESS is required"))
	}
	if c.Ledger.PrivateKeyHex == "" {
		errs = append(errs, errors.New("LEDGER_PRIVATE_KEY is required"))
	}
	if c.Ledger.Timeout <= 0 {
		errs = append(errs, errors.New("LEDGER_TIMEOUT must be positive"))
	}
	if c.Server.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required"))
	}
	if !c.RateLimit.Disabled && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.Kafka.AuditTopic == "" && len(c.Kafka.Brokers) > 0 {
		errs = append(errs, errors.New("KAFKA_AUDIT_TOPIC is required when KAFKA_BROKERS is set"))
	}
	return errors.Join(errs...)
}

// UsesDefaultSigningKey reports whether the development JWT key is in effect.
func (c Config) UsesDefaultSigningKey() bool {
	return c.Server.JWTSigningKey == defaultJWTSigningKey
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
