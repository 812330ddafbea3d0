package config

import (
	"time"

	"github.com/caarlos0/env/v7"
)

// Process se lee una sola vez, en el cold start. Todo es opcional.
type Process struct {
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	RunsDatabaseURL   string        `env:"RUNS_DATABASE_URL"`
	RunsDBPingTimeout time.Duration `env:"RUNS_DATABASE_PING_TIMEOUT" envDefault:"5s"`

	DiscordWebhookID    string `env:"DISCORD_WEBHOOK_ID"`
	DiscordWebhookToken string `env:"DISCORD_WEBHOOK_TOKEN"`
}

func LoadProcess() (Process, error) {
	var p Process
	err := env.Parse(&p)
	return p, err
}

func (p Process) LedgerEnabled() bool { return p.RunsDatabaseURL != "" }

func (p Process) DiscordEnabled() bool {
	return p.DiscordWebhookID != "" && p.DiscordWebhookToken != ""
}
