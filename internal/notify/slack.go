// Package notify delivers benchmark verdicts to external channels.
package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Notifier is the interface for sending a benchmark verdict somewhere.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// SlackNotifier posts messages to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
}

// NewSlackNotifier creates a notifier for the given webhook URL.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

// Notify sends the message to the configured webhook.
func (s *SlackNotifier) Notify(ctx context.Context, message string) error {
	if s.webhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}
	msg := &slack.WebhookMessage{Text: message}
	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	return nil
}
