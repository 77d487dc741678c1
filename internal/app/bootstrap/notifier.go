package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/onetriage/leadintake/internal/config"
	"github.com/onetriage/leadintake/internal/notify"
	"github.com/onetriage/leadintake/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so every binary shares the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, loaders...)
}

// BuildEmailSender returns the sender for EMAIL_PROVIDER, or nil when alerts are off.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case appconfig.EmailProviderNone, "":
		return nil, nil
	case appconfig.EmailProviderStub:
		return notify.NewStubEmailSender(logger), nil
	case appconfig.EmailProviderSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: sendgrid api key is required")
		}
		return sender, nil
	case appconfig.EmailProviderSES:
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
			if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
		return notify.NewSESSender(client, notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}

// BuildNotifier combines the per-form webhooks with the optional email alert.
func BuildNotifier(cfg *appconfig.Config, client *http.Client, sender notify.EmailSender, logger *logging.Logger) notify.Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	webhook := notify.NewWebhookNotifier(notify.WebhookConfig{URLs: cfg.WebhookURLs(), Client: client})
	email := notify.NewEmailNotifier(sender, cfg.AlertEmailTo)
	if email == nil {
		return webhook
	}
	logger.Info("lead email alerts enabled", "provider", cfg.EmailProvider, "to", cfg.AlertEmailTo)
	return notify.Fanout{webhook, email}
}
