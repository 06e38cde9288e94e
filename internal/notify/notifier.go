// Package notify delivers support escalation notifications. Delivery is best
// effort: failures are logged and never surfaced to the chat user.
package notify

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"vendor-portal-chatbot/internal/common/aws"
	"vendor-portal-chatbot/internal/common/config"
	stderrors "vendor-portal-chatbot/internal/common/errors"
	"vendor-portal-chatbot/internal/common/logger"
)

// EmailSender is the SES surface the notifier depends on.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// TopicPublisher is the SNS surface the notifier depends on.
type TopicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Notifier struct {
	cfg    config.NotificationConfig
	email  EmailSender
	topic  TopicPublisher
	logger logger.Logger
}

// New builds a Notifier from config. Disabled channels get nil clients and
// are skipped at send time.
func New(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	n := &Notifier{
		cfg:    cfg,
		logger: log.With(map[string]interface{}{"component": "notifier"}),
	}

	if cfg.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		n.email = sesClient
	}

	if cfg.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		n.topic = snsClient
	}

	return n, nil
}

// NewWithClients wires explicit clients, used by tests.
func NewWithClients(cfg config.NotificationConfig, email EmailSender, topic TopicPublisher, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, email: email, topic: topic, logger: log}
}

// EscalateUnresolved notifies the support inbox that a user reported their
// query as unresolved.
func (n *Notifier) EscalateUnresolved(ctx context.Context, conversationID string) {
	if n.email == nil || !n.cfg.Email.Enabled {
		return
	}

	subject := "Vendor portal chat: unresolved query"
	body := fmt.Sprintf(
		"Conversation %s was marked unresolved at %s. The user was asked to contact %s.",
		conversationID, time.Now().UTC().Format(time.RFC3339), n.cfg.Email.ToEmail,
	)

	input := &ses.SendEmailInput{
		Source: awssdk.String(n.cfg.Email.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.cfg.Email.ToEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	}

	if _, err := n.email.SendEmail(ctx, input); err != nil {
		stdErr := stderrors.NewNotificationError("email", err)
		n.logger.Error("escalation email failed", map[string]interface{}{
			"conversationId": conversationID,
			"errorCode":      string(stdErr.Code),
			"details":        stdErr.Details,
		})
	}
}

// AlertTransfer publishes a transfer-request alert so an agent can pick up
// the conversation.
func (n *Notifier) AlertTransfer(ctx context.Context, conversationID, utterance string) {
	if n.topic == nil || !n.cfg.SMS.Enabled {
		return
	}

	message := fmt.Sprintf("Transfer requested in conversation %s: %q", conversationID, utterance)
	input := &sns.PublishInput{
		TopicArn: awssdk.String(n.cfg.SMS.TopicARN),
		Message:  awssdk.String(message),
	}

	if _, err := n.topic.Publish(ctx, input); err != nil {
		stdErr := stderrors.NewNotificationError("sns", err)
		n.logger.Error("transfer alert failed", map[string]interface{}{
			"conversationId": conversationID,
			"errorCode":      string(stdErr.Code),
			"details":        stdErr.Details,
		})
	}
}
