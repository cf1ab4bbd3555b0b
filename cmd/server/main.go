package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"

	jwttoken "warranty/internal/jwt_token"
	"warranty/internal/ledger"
	"warranty/internal/platform/config"
	"warranty/internal/platform/httpserver"
	"warranty/internal/platform/logger"
	"warranty/internal/platform/middleware"
	"warranty/internal/platform/postgres"
	"warranty/internal/platform/redis"
	"warranty/internal/ratelimit"
	"warranty/internal/warranty/cache"
	"warranty/internal/warranty/handler"
	"warranty/internal/warranty/metadata"
	warrantyMetrics "warranty/internal/warranty/metrics"
	"warranty/internal/warranty/service"
	"warranty/internal/warranty/store"
	"warranty/pkg/platform/audit"
	"warranty/pkg/platform/audit/publisher"
	kafkaaudit "warranty/pkg/platform/audit/store/kafka"
	auditmemory "warranty/pkg/platform/audit/store/memory"
	auditpostgres "warranty/pkg/platform/audit/store/postgres"
	"warranty/pkg/platform/circuit"
	"warranty/pkg/platform/retry"
)

// infra holds the connections that need closing on shutdown.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
	audit *publisher.Publisher
}

func (i *infra) close() {
	if i.audit != nil {
		i.audit.Close()
	}
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

// main wires dependencies, exposes the HTTP router, and keeps the server
// lifecycle small. Business logic lives in the warranty service.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.UsesDefaultSigningKey() {
		log.Warn("using the development JWT signing key")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &infra{}
	defer deps.close()

	ledgerClient, err := buildLedger(ctx, cfg.Ledger, log)
	if err != nil {
		return err
	}

	warrantyStore, err := buildStore(ctx, cfg.Database, deps, log)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(warrantyMetrics.New()),
		service.WithMetadataBuilder(metadata.NewBuilder(cfg.Server.PublicBaseURL)),
	}

	deps.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if deps.redis != nil {
		opts = append(opts,
			service.WithResolutionCache(cache.NewRedisResolutionCache(deps.redis, cfg.Redis.ResolutionTTL)),
			service.WithJournal(cache.NewRedisJournal(deps.redis)),
			service.WithHealthCheck("redis", deps.redis.Health),
		)
		log.Info("resolution cache and reconciliation journal backed by redis")
	} else {
		log.Warn("REDIS_URL not set, reconciliation journal is in-process and lost on restart")
	}

	auditStore, err := buildAuditStore(ctx, cfg.Kafka, deps, log)
	if err != nil {
		return err
	}
	deps.audit = publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(256), publisher.WithLogger(log))
	opts = append(opts, service.WithAuditPublisher(deps.audit))

	svc := service.New(ledgerClient, warrantyStore, opts...)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	issuerOnly := middleware.RequireRole(jwttoken.NewJWTServiceAdapter(jwtService), jwttoken.RoleIssuer, log)

	var limitStore ratelimit.Store = ratelimit.NewInMemoryStore()
	if deps.redis != nil {
		limitStore = ratelimit.NewRedisStore(deps.redis)
	}
	limiter := ratelimit.New(limitStore, log,
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
		ratelimit.WithPolicy(ratelimit.ClassIssue, ratelimit.Policy{Limit: cfg.RateLimit.IssuePerCaller, Window: cfg.RateLimit.Window}),
		ratelimit.WithPolicy(ratelimit.ClassScan, ratelimit.Policy{Limit: cfg.RateLimit.ScanPerCaller, Window: cfg.RateLimit.Window}),
	)

	router := chi.NewRouter()
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.AccessLog(log))
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api/warranty", handler.New(svc, log, issuerOnly, handler.WithRateLimiter(limiter)).Register)

	srv := httpserver.New(cfg.Server.Addr, router, cfg.Ledger.Timeout)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting warranty service",
			"addr", cfg.Server.Addr,
			"contract", ledgerClient.Address().Hex(),
			"sender", ledgerClient.Sender().Hex(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Ledger.Timeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func buildLedger(ctx context.Context, cfg config.LedgerConfig, log *slog.Logger) (*ledger.Client, error) {
	metrics := ledger.NewMetrics()
	breaker := circuit.New("ledger-reads",
		circuit.WithFailureThreshold(cfg.BreakerFailureThreshold),
		circuit.WithSuccessThreshold(cfg.BreakerSuccessThreshold),
		circuit.WithCooldown(cfg.BreakerCooldown),
	)

	queryRetry := retry.NewStrategy(retry.Config{
		Enabled:      cfg.QueryRetryEnabled,
		MaxRetries:   cfg.QueryMaxRetries,
		InitialDelay: cfg.QueryInitialDelay,
		MaxDelay:     cfg.QueryMaxDelay,
	},
		retry.WithClassifier(ledger.RetryableRead),
		retry.WithLogger(log),
	)

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	client, err := ledger.Dial(dialCtx, cfg.RPCURL, ledger.Config{
		ContractAddress: cfg.ContractAddress,
		PrivateKeyHex:   cfg.PrivateKeyHex,
		ChainID:         cfg.ChainID,
		Timeout:         cfg.Timeout,
	},
		ledger.WithLogger(log),
		ledger.WithMetrics(metrics),
		ledger.WithBreaker(breaker),
		ledger.WithQueryRetry(queryRetry),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func buildStore(ctx context.Context, cfg config.DatabaseConfig, deps *infra, log *slog.Logger) (service.Store, error) {
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		log.Warn("DATABASE_URL not set, using in-memory warranty store")
		return store.NewInMemoryStore(), nil
	}
	deps.db = db

	if _, err := db.ExecContext(ctx, store.Schema); err != nil {
		return nil, fmt.Errorf("apply warranty schema: %w", err)
	}
	log.Info("warranty store backed by postgres")
	return store.NewPostgresStore(db), nil
}

func buildAuditStore(ctx context.Context, cfg config.KafkaConfig, deps *infra, log *slog.Logger) (audit.Store, error) {
	if len(cfg.Brokers) == 0 {
		if deps.db != nil {
			if _, err := deps.db.ExecContext(ctx, auditpostgres.Schema); err != nil {
				return nil, fmt.Errorf("apply audit schema: %w", err)
			}
			log.Info("KAFKA_BROKERS not set, audit events stored in postgres")
			return auditpostgres.New(deps.db), nil
		}
		log.Info("KAFKA_BROKERS not set, audit events kept in memory")
		return auditmemory.NewInMemoryStore(), nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	deps.kafka = client

	if err := kafkaaudit.EnsureTopic(ctx, client, cfg.AuditTopic, 3, 1); err != nil {
		return nil, err
	}
	log.Info("audit events published to kafka", "topic", cfg.AuditTopic)
	return kafkaaudit.New(client, cfg.AuditTopic), nil
}
