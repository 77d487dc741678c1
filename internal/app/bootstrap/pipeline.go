package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/onetriage/leadintake/internal/config"
	"github.com/onetriage/leadintake/internal/http/handlers"
	"github.com/onetriage/leadintake/internal/leads"
	"github.com/onetriage/leadintake/internal/observability/metrics"
	"github.com/onetriage/leadintake/pkg/logging"
)

// Pipeline is everything a binary needs to accept leads.
type Pipeline struct {
	Dispatcher *leads.Dispatcher
	Guard      leads.Guard
	Metrics    *metrics.LeadMetrics
	// Health holds one probe per external dependency that has one.
	Health map[string]handlers.HealthCheck

	closers []func()
}

// Close releases pooled connections in reverse order of creation.
func (p *Pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
	p.closers = nil
}

// FallbackEmails maps each form to the inbox its failure banner names.
func FallbackEmails(cfg *appconfig.Config) map[leads.FormType]string {
	return map[leads.FormType]string{
		leads.FormContact: cfg.SupportEmail,
		leads.FormPartner: cfg.SalesEmail,
	}
}

// BuildPipeline wires recorder, notifier, guard and metrics from cfg. A nil reg
// skips metric registration.
func BuildPipeline(ctx context.Context, cfg *appconfig.Config, reg prometheus.Registerer, logger *logging.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	p := &Pipeline{Health: map[string]handlers.HealthCheck{}}

	client := BuildHTTPClient(cfg)
	recorder, pool, err := BuildRecorder(ctx, cfg, client, logger)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		p.closers = append(p.closers, pool.Close)
		p.Health["postgres"] = pool.Ping
	}

	sender, err := BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		p.Close()
		return nil, err
	}

	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		p.closers = append(p.closers, func() { _ = redisClient.Close() })
		p.Health["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		logger.Info("submission guard backed by redis", "addr", cfg.RedisAddr)
	}
	p.Guard = BuildGuard(redisClient, cfg, logger)

	if reg != nil {
		p.Metrics = metrics.NewLeadMetrics(reg)
	}
	p.Dispatcher = leads.NewDispatcher(leads.DispatcherConfig{
		Source:    cfg.Source,
		SiteLabel: cfg.SiteLabel,
		Notifier:  BuildNotifier(cfg, client, sender, logger),
		Recorder:  recorder,
		Logger:    logger,
		Metrics:   p.Metrics,
	})
	return p, nil
}
