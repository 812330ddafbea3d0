package discord

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/keyspaces-janitor/internal/domain"
)

const (
	colorOK   = 0x2ecc71
	colorFail = 0xe74c3c

	defaultUsername = "Keyspaces Janitor"
)

var titles = map[domain.Outcome]string{
	domain.OutcomeSucceeded:     "✅ Cleanup successful",
	domain.OutcomeConfigError:   "❌ Cleanup skipped: invalid configuration",
	domain.OutcomeConnectFailed: "❌ Cleanup failed: could not connect",
	domain.OutcomeQueryFailed:   "❌ Cleanup failed",
}

// Notifier publica el resultado de cada corrida en un webhook de Discord.
// No necesita token de bot: los webhooks se autentican con su propio token.
type Notifier struct {
	s         *discordgo.Session
	webhookID string
	token     string
	username  string
}

type Option func(*Notifier)

func WithHTTPClient(h *http.Client) Option {
	return func(n *Notifier) { n.s.Client = h }
}

func WithUsername(u string) Option {
	return func(n *Notifier) { n.username = u }
}

func New(webhookID, token string, opts ...Option) (*Notifier, error) {
	s, err := discordgo.New("")
	if err != nil {
		return nil, err
	}
	s.MaxRestRetries = 1
	s.Client = &http.Client{Timeout: 5 * time.Second}
	n := &Notifier{s: s, webhookID: webhookID, token: token, username: defaultUsername}
	for _, o := range opts {
		o(n)
	}
	return n, nil
}

func (n *Notifier) Report(ctx context.Context, run domain.Run) error {
	_, err := n.s.WebhookExecute(n.webhookID, n.token, false, webhookParams(n.username, run), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}

func webhookParams(username string, run domain.Run) *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Username:        username,
		Embeds:          []*discordgo.MessageEmbed{runEmbed(run)},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
}

func runEmbed(run domain.Run) *discordgo.MessageEmbed {
	color := colorOK
	if !run.Outcome.OK() {
		color = colorFail
	}
	title, ok := titles[run.Outcome]
	if !ok {
		title = "❔ Cleanup " + string(run.Outcome)
	}

	target := "—"
	if run.Keyspace != "" || run.Table != "" {
		target = fmt.Sprintf("`%s.%s`", run.Keyspace, run.Table)
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Target", Value: target, Inline: true},
		{Name: "Duration", Value: run.Duration().Round(time.Millisecond).String(), Inline: true},
		{Name: "Trigger", Value: run.Trigger, Inline: true},
	}
	if run.Threshold != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Deleted before",
			Value: run.Threshold.UTC().Format(time.RFC3339),
		})
	}
	if run.Error != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Error",
			Value: "```" + truncate(run.Error, 1000) + "```",
		})
	}

	e := &discordgo.MessageEmbed{
		Title:  title,
		Color:  color,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{Text: "run " + run.ID},
	}
	if !run.FinishedAt.IsZero() {
		e.Timestamp = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	return e
}

// límite de Discord para value de field: 1024. n es en bytes; el corte
// retrocede hasta un inicio de rune.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
