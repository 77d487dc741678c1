package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/onetriage/leadintake/pkg/logging"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SendGrid, SES) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Body    string
}

// replyAddresser is implemented by payloads that know the submitter's address.
type replyAddresser interface {
	ReplyAddress() string
}

// EmailNotifier alerts an inbox about a new lead. It is a second, optional
// notification channel next to the webhook.
type EmailNotifier struct {
	sender EmailSender
	to     string
}

// NewEmailNotifier returns nil when either the sender or the recipient is missing.
func NewEmailNotifier(sender EmailSender, to string) *EmailNotifier {
	to = strings.TrimSpace(to)
	if sender == nil || to == "" {
		return nil
	}
	return &EmailNotifier{sender: sender, to: to}
}

// Notify renders payload as indented JSON and mails it.
func (n *EmailNotifier) Notify(ctx context.Context, route string, payload any) Result {
	res := Result{Channel: "email", Route: route}
	if n == nil || n.sender == nil {
		res.Err = fmt.Errorf("%w: email", ErrNotConfigured)
		return res
	}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		res.Err = fmt.Errorf("notify: render email body: %w", err)
		return res
	}
	msg := EmailMessage{
		To:      n.to,
		Subject: fmt.Sprintf("New %s form submission", route),
		Body:    string(body),
	}
	if ra, ok := payload.(replyAddresser); ok {
		msg.ReplyTo = ra.ReplyAddress()
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		res.Err = err
	}
	return res
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender creates a new SendGrid email sender.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

const defaultFromName = "OneTriage Leads"

// Send sends a plain-text email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmailPlainText(from, msg.Subject, to, msg.Body)
	if msg.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Debug("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode)
	return nil
}

// StubEmailSender logs instead of sending. Used in development.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: would send email", "to", msg.To, "subject", msg.Subject)
	return nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
	_ Notifier    = (*EmailNotifier)(nil)
)
