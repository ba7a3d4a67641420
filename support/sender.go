package support

import (
	"fmt"
	"net/http"
	"time"
	"wisp/contract"
	"wisp/errors"
)

type Kind string

const (
	KindDiscord Kind = "discord"
	KindSlack   Kind = "slack"
)

// NewSender builds the sender for the webhook kind.
// Without a url it returns nil and support tickets are answered with a "not configured" notice.
func NewSender(kind Kind, url *string, timeout time.Duration) (contract.SupportSender, error) {
	if url == nil || *url == "" {
		return nil, nil
	}
	client := &http.Client{Timeout: timeout}
	switch kind {
	case KindDiscord, "":
		return NewDiscordSender(client, *url), nil
	case KindSlack:
		return NewSlackSender(client, *url), nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownWebhookKind, kind)
	}
}
