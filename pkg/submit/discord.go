package submit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/warmans/demonlist/pkg/score"
)

var ErrInvalidWebhook = errors.New("invalid webhook url")

const embedColour = 0xd14a4a

// webhookExecutor is implemented by *discordgo.Session.
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ParseWebhookURL extracts the id and token from a URL like
// https://discord.com/api/webhooks/{id}/{token}.
func ParseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for k := 0; k+2 < len(parts); k++ {
		if parts[k] == "webhooks" && parts[k+1] != "" && parts[k+2] != "" {
			return parts[k+1], parts[k+2], nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrInvalidWebhook, u.Redacted())
}

func NewDiscordNotifier(session webhookExecutor, webhookURL string, username string) (*DiscordNotifier, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{session: session, webhookID: id, token: token, username: username}, nil
}

type DiscordNotifier struct {
	session   webhookExecutor
	webhookID string
	token     string
	username  string
}

// Notify executes the webhook and waits for Discord to return the created message.
func (d *DiscordNotifier) Notify(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := d.session.WebhookExecute(d.webhookID, d.token, true, webhookParams(d.username, n), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("webhook execute failed: %w", err)
	}
	if msg == nil {
		return errors.New("webhook execute did not return a message")
	}
	return nil
}

func webhookParams(username string, n Notification) *discordgo.WebhookParams {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Holder", Value: truncate(n.Holder, maxFieldValue), Inline: true},
		{Name: "Percentage", Value: score.FormatPercent(n.Percentage) + "%", Inline: true},
		{Name: "Footage", Value: truncate(n.Footage, maxFieldValue)},
	}
	if strings.TrimSpace(n.RawFootage) != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Raw footage", Value: truncate(n.RawFootage, maxFieldValue)})
	}
	if strings.TrimSpace(n.Notes) != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Notes", Value: truncate(n.Notes, maxFieldValue)})
	}
	return &discordgo.WebhookParams{
		Username: username,
		Content: truncate(fmt.Sprintf(
			"New record on %s (%s): %s at %s%%",
			n.Level,
			n.Rank,
			n.Holder,
			score.FormatPercent(n.Percentage),
		), maxContent),
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:  truncate(n.Level, maxTitle),
				URL:    linkURL(n.Footage),
				Color:  embedColour,
				Fields: fields,
				Footer: &discordgo.MessageEmbedFooter{Text: "submission " + n.ID},
			},
		},
	}
}

// Discord rejects the whole message when any of these are exceeded.
const (
	maxContent    = 2000
	maxTitle      = 256
	maxFieldValue = 1024
)

// linkURL returns raw when it is an absolute http(s) URL, otherwise empty. Footage is free text
// and Discord refuses embeds with a malformed URL.
func linkURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
