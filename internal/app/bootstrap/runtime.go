package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/onetriage/leadintake/internal/config"
	"github.com/onetriage/leadintake/internal/leads"
	"github.com/onetriage/leadintake/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildGuard picks the Redis guard when a client is available, else the in-process one.
func BuildGuard(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) leads.Guard {
	if redisClient == nil {
		return leads.NewMemoryGuard()
	}
	return leads.NewRedisGuard(redisClient, cfg.GuardTTL, logger)
}

// BuildHTTPClient is shared by the webhook notifier and the API recorder.
func BuildHTTPClient(cfg *appconfig.Config) *http.Client {
	return &http.Client{Timeout: cfg.OutboundTimeout}
}

// BuildRecorder wires the system of record selected by RECORD_BACKEND. The returned
// pool is non-nil only for the postgres backend; the caller closes it.
func BuildRecorder(ctx context.Context, cfg *appconfig.Config, client *http.Client, logger *logging.Logger) (leads.Recorder, *pgxpool.Pool, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.RecordBackend {
	case appconfig.RecordBackendAPI, "":
		logger.Info("recording leads via API", "contact_url", cfg.ContactAPIURL, "partner_url", cfg.PartnerAPIURL)
		return leads.NewAPIRecorder(map[leads.FormType]string{
			leads.FormContact: cfg.ContactAPIURL,
			leads.FormPartner: cfg.PartnerAPIURL,
		}, client), nil, nil
	case appconfig.RecordBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		logger.Info("recording leads in postgres")
		return leads.NewPostgresRecorder(pool), pool, nil
	case appconfig.RecordBackendMemory:
		logger.Warn("recording leads in memory; submissions are lost on restart")
		return leads.NewMemoryRecorder(), nil, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown record backend %q", cfg.RecordBackend)
	}
}
