// Package support forwards support tickets to an incoming webhook.
package support

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"wisp/domain"
	"wisp/errors"

	"github.com/bwmarrin/discordgo"
)

const (
	ticketTitle = "New Wisp Support Ticket"
	ticketColor = 10181046
	fromField   = "From User ID"
)

// DiscordSender posts a ticket as a single embed to a Discord webhook URL.
type DiscordSender struct {
	client *http.Client
	url    string
}

func NewDiscordSender(client *http.Client, url string) *DiscordSender {
	return &DiscordSender{client: client, url: url}
}

func (d *DiscordSender) Send(ctx context.Context, ticket domain.SupportTicket) error {
	body, err := json.Marshal(discordPayload(ticket))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return &errors.TransportError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &errors.TransportError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return nil
}

func discordPayload(ticket domain.SupportTicket) discordgo.WebhookParams {
	return discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       ticketTitle,
			Description: ticket.Text,
			Color:       ticketColor,
			Fields: []*discordgo.MessageEmbedField{{
				Name:   fromField,
				Value:  fmt.Sprintf("`%s`", ticket.From),
				Inline: true,
			}},
			Timestamp: ticket.At.UTC().Format(time.RFC3339),
		}},
	}
}
