package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/onetriage/leadintake/internal/notify"
	"github.com/onetriage/leadintake/internal/observability/metrics"
	"github.com/onetriage/leadintake/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var dispatchTracer = otel.Tracer("onetriage.internal.leads.dispatcher")

// Default origin labels.
const (
	DefaultSource    = "OneTriage"
	DefaultSiteLabel = "OneTriage Marketing Website"
)

// DispatcherConfig wires a Dispatcher. Notifier and Recorder are required.
type DispatcherConfig struct {
	// Source is the short origin label (LeadRecord.Source, webhook "source").
	Source string
	// SiteLabel is the long origin label (webhook data.source, API "source").
	SiteLabel string
	Notifier  notify.Notifier
	Recorder  Recorder
	Logger    *logging.Logger
	Metrics   *metrics.LeadMetrics
	Now       func() time.Time
}

// Dispatcher turns validated fields into a LeadRecord and sends it out: first the
// advisory notification, then the system-of-record write.
type Dispatcher struct {
	source    string
	siteLabel string
	notifier  notify.Notifier
	recorder  Recorder
	logger    *logging.Logger
	metrics   *metrics.LeadMetrics
	now       func() time.Time
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Recorder == nil {
		panic("leads: recorder required")
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Noop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.SiteLabel == "" {
		cfg.SiteLabel = DefaultSiteLabel
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Dispatcher{
		source:    cfg.Source,
		siteLabel: cfg.SiteLabel,
		notifier:  cfg.Notifier,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		now:       cfg.Now,
	}
}

// Dispatch sends one submission. The notification outcome never affects the
// returned error; only the record write does. No retries.
func (d *Dispatcher) Dispatch(ctx context.Context, f Fields) (*LeadRecord, error) {
	ft := string(f.FormType())
	ctx, span := dispatchTracer.Start(ctx, "leads.dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("onetriage.form_type", ft))

	rec, err := NewLeadRecord(f, d.source, d.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record")
		return nil, fmt.Errorf("leads: build record: %w", err)
	}
	logger := d.logger.With("form_type", ft, "lead_id", rec.ID)
	logger.Info("lead submission", "lead", rec)

	d.notify(ctx, logger, rec)

	start := time.Now()
	err = d.recorder.Record(ctx, Submission{Lead: rec, Payload: BuildRecordPayload(rec, d.siteLabel)})
	d.metrics.ObserveRecord(ft, err == nil, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record")
		logger.Error("lead record failed", "error", err)
		return nil, fmt.Errorf("leads: record %s lead: %w", ft, err)
	}
	logger.Info("lead recorded")
	return rec, nil
}

func (d *Dispatcher) notify(ctx context.Context, logger *logging.Logger, rec *LeadRecord) {
	res := d.notifier.Notify(ctx, string(rec.FormType), BuildNotification(rec, d.siteLabel))
	res.Log(logger)
	d.metrics.ObserveNotification(string(rec.FormType), res.OK())
}
