package support

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"wisp/domain"
	"wisp/errors"

	"github.com/slack-go/slack"
)

// SlackSender posts a ticket to a Slack incoming webhook.
type SlackSender struct {
	client *http.Client
	url    string
}

func NewSlackSender(client *http.Client, url string) *SlackSender {
	return &SlackSender{client: client, url: url}
}

func (s *SlackSender) Send(ctx context.Context, ticket domain.SupportTicket) error {
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.url, s.client, slackPayload(ticket)); err != nil {
		return &errors.TransportError{Cause: err}
	}
	return nil
}

func slackPayload(ticket domain.SupportTicket) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Text: ticketTitle,
		Attachments: []slack.Attachment{{
			Color: fmt.Sprintf("#%06x", ticketColor),
			Text:  ticket.Text,
			Fields: []slack.AttachmentField{{
				Title: fromField,
				Value: fmt.Sprintf("`%s`", ticket.From),
				Short: true,
			}},
			Ts: json.Number(strconv.FormatInt(ticket.At.Unix(), 10)),
		}},
	}
}
