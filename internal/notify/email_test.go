package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/onetriage/leadintake/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	msgs []EmailMessage
	err  error
}

func (c *captureSender) Send(_ context.Context, msg EmailMessage) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

type replyPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (p replyPayload) ReplyAddress() string { return p.Email }

func TestNewEmailNotifier_NilWithoutRecipient(t *testing.T) {
	assert.Nil(t, NewEmailNotifier(&captureSender{}, "  "))
	assert.Nil(t, NewEmailNotifier(nil, "sales@example.com"))
}

func TestEmailNotifier_RendersPayload(t *testing.T) {
	sender := &captureSender{}
	n := NewEmailNotifier(sender, "sales@example.com")
	require.NotNil(t, n)

	res := n.Notify(context.Background(), "Partner", replyPayload{Name: "Jane", Email: "jane@x.com"})

	require.NoError(t, res.Err)
	assert.Equal(t, "email", res.Channel)
	require.Len(t, sender.msgs, 1)
	msg := sender.msgs[0]
	assert.Equal(t, "sales@example.com", msg.To)
	assert.Equal(t, "New Partner form submission", msg.Subject)
	assert.Equal(t, "jane@x.com", msg.ReplyTo)
	assert.Contains(t, msg.Body, `"name": "Jane"`)
}

func TestEmailNotifier_SenderErrorIsReported(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	res := NewEmailNotifier(sender, "sales@example.com").Notify(context.Background(), "Contact", map[string]string{})
	assert.EqualError(t, res.Err, "smtp down")
	assert.False(t, res.OK())
}

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "", FromEmail: "leads@example.com"}, nil)
	assert.Nil(t, sender)
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "leads@example.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, defaultFromName, sender.fromName)
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}
	err := sender.Send(context.Background(), EmailMessage{To: "a@example.com", Subject: "s", Body: "b"})
	assert.Error(t, err)
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "leads@onetriage.com"}, logging.Discard())
	require.NotNil(t, sender)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "sales@onetriage.com",
		ReplyTo: "jane@x.com",
		Subject: "New Contact form submission",
		Body:    "{}",
	})
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "OneTriage Leads <leads@onetriage.com>", aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, []string{"sales@onetriage.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, []string{"jane@x.com"}, client.input.ReplyToAddresses)
	assert.Equal(t, "{}", aws.ToString(client.input.Content.Simple.Body.Text.Data))
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{FromEmail: "x@y.z"}, logging.Discard())
	err := sender.Send(context.Background(), EmailMessage{To: "a@b.c"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "throttled"))
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}
