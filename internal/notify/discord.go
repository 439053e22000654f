package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Embed sidebar colors, keyed off the event in embedColor.
const (
	discordColorProfit  = 0x2ECC71
	discordColorError   = 0xE74C3C
	discordColorNeutral = 0x95A5A6
)

// Discord rejects embed descriptions longer than 4096 characters.
const discordDescriptionLimit = 4096

// DiscordSender delivers alerts to a Discord webhook as embeds. Opportunity
// alerts render green with the route lines in a code block so the columns
// line up; scan errors render red.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
	now        func() time.Time
}

// NewDiscordSender creates a DiscordSender for the given webhook URL. It uses a
// default HTTP client with a 10-second timeout.
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Send posts one embed to the webhook.
func (d *DiscordSender) Send(ctx context.Context, event, title, message string) error {
	payload := discordPayload{
		Embeds: []discordEmbed{{
			Title:       title,
			Description: discordDescription(message),
			Color:       embedColor(event),
			Timestamp:   d.now().UTC().Format(time.RFC3339),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord: send request: %w", err)
	}
	defer resp.Body.Close()

	// Discord returns 204 No Content on success.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Name returns the sender identifier.
func (d *DiscordSender) Name() string {
	return "discord"
}

func embedColor(event string) int {
	switch event {
	case EventOpportunityFound:
		return discordColorProfit
	case EventScanError:
		return discordColorError
	default:
		return discordColorNeutral
	}
}

// discordDescription fences the message so route columns stay aligned, and
// trims it under the embed limit. The fence itself costs 8 characters.
func discordDescription(message string) string {
	const fenceOverhead = 8
	if len(message) > discordDescriptionLimit-fenceOverhead {
		message = message[:discordDescriptionLimit-fenceOverhead]
	}
	return "```\n" + message + "\n```"
}
