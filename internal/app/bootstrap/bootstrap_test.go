package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/onetriage/leadintake/internal/config"
	"github.com/onetriage/leadintake/internal/leads"
	"github.com/onetriage/leadintake/internal/notify"
	"github.com/onetriage/leadintake/pkg/logging"
)

func TestBuildRedisClient(t *testing.T) {
	logger := logging.Discard()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, logger, true))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true)
	require.NotNil(t, client)
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logger, true))
	assert.NotNil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logger, false))
}

func TestBuildGuard(t *testing.T) {
	cfg := &appconfig.Config{GuardTTL: time.Minute}
	assert.IsType(t, &leads.MemoryGuard{}, BuildGuard(nil, cfg, logging.Discard()))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), false)
	defer client.Close()
	assert.IsType(t, &leads.RedisGuard{}, BuildGuard(client, cfg, logging.Discard()))
}

func TestBuildRecorder(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()

	rec, pool, err := BuildRecorder(ctx, &appconfig.Config{RecordBackend: appconfig.RecordBackendAPI, ContactAPIURL: "http://api.local/c"}, http.DefaultClient, logger)
	require.NoError(t, err)
	assert.Nil(t, pool)
	assert.IsType(t, &leads.APIRecorder{}, rec)

	rec, _, err = BuildRecorder(ctx, &appconfig.Config{RecordBackend: appconfig.RecordBackendMemory}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &leads.MemoryRecorder{}, rec)

	_, _, err = BuildRecorder(ctx, &appconfig.Config{RecordBackend: "sheets"}, nil, logger)
	assert.ErrorContains(t, err, "unknown record backend")

	_, _, err = BuildRecorder(ctx, &appconfig.Config{RecordBackend: appconfig.RecordBackendPostgres, DatabaseURL: "::not a dsn::"}, nil, logger)
	assert.Error(t, err)
}

func TestBuildEmailSender(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()

	sender, err := BuildEmailSender(ctx, &appconfig.Config{EmailProvider: appconfig.EmailProviderNone}, logger)
	require.NoError(t, err)
	assert.Nil(t, sender)

	sender, err = BuildEmailSender(ctx, &appconfig.Config{
		EmailProvider:  appconfig.EmailProviderSendGrid,
		SendGridAPIKey: "SG.test",
		EmailFrom:      "leads@onetriage.com",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.SendGridSender{}, sender)

	_, err = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: appconfig.EmailProviderSendGrid}, logger)
	assert.Error(t, err)

	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	sender, err = BuildEmailSender(ctx, &appconfig.Config{
		EmailProvider:       appconfig.EmailProviderSES,
		EmailFrom:           "leads@onetriage.com",
		AWSRegion:           "us-east-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.SESSender{}, sender)

	sender, err = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: appconfig.EmailProviderStub}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.StubEmailSender{}, sender)

	_, err = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "pigeon"}, logger)
	assert.Error(t, err)
}

func TestBuildNotifier(t *testing.T) {
	cfg := &appconfig.Config{ContactWebhookURL: "http://hooks.local/c"}
	assert.IsType(t, &notify.WebhookNotifier{}, BuildNotifier(cfg, nil, nil, logging.Discard()))

	cfg.AlertEmailTo = "sales@onetriage.com"
	n := BuildNotifier(cfg, nil, notify.NewStubEmailSender(logging.Discard()), logging.Discard())
	fan, ok := n.(notify.Fanout)
	require.True(t, ok)
	assert.Len(t, fan, 2)
}

func TestBuildPipeline_EndToEnd(t *testing.T) {
	var hooked bool
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooked = true
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()
	mr := miniredis.RunT(t)

	cfg := &appconfig.Config{
		Source:            "OneTriage",
		SiteLabel:         "OneTriage Marketing Website",
		RecordBackend:     appconfig.RecordBackendMemory,
		ContactWebhookURL: hook.URL,
		RedisAddr:         mr.Addr(),
		GuardTTL:          time.Minute,
		EmailProvider:     appconfig.EmailProviderNone,
	}
	p, err := BuildPipeline(context.Background(), cfg, prometheus.NewRegistry(), logging.Discard())
	require.NoError(t, err)
	defer p.Close()

	assert.IsType(t, &leads.RedisGuard{}, p.Guard)
	require.Contains(t, p.Health, "redis")
	assert.NoError(t, p.Health["redis"](context.Background()))
	require.NotNil(t, p.Metrics)

	f, err := leads.NewFields(leads.FormContact)
	require.NoError(t, err)
	for name, v := range map[string]string{
		leads.FieldFullName:        "Jane Doe",
		leads.FieldEmail:           "jane@x.com",
		leads.FieldPhone:           "(555) 123-4567",
		leads.FieldServiceInterest: "Care coordination",
		leads.FieldMessage:         "Need a demo of the platform",
	} {
		require.NoError(t, f.Set(name, v))
	}
	rec, err := p.Dispatcher.Dispatch(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "OneTriage", rec.Source)
	assert.True(t, hooked)
}

func TestFallbackEmails(t *testing.T) {
	got := FallbackEmails(&appconfig.Config{SupportEmail: "s@x.com", SalesEmail: "b@x.com"})
	assert.Equal(t, "s@x.com", got[leads.FormContact])
	assert.Equal(t, "b@x.com", got[leads.FormPartner])
}
