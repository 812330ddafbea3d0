package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"

	"github.com/jose-valero/keyspaces-janitor/internal/adapters/discord"
	"github.com/jose-valero/keyspaces-janitor/internal/app/service"
	"github.com/jose-valero/keyspaces-janitor/internal/domain"
	"github.com/jose-valero/keyspaces-janitor/internal/infra/cassandra"
	"github.com/jose-valero/keyspaces-janitor/internal/infra/config"
	"github.com/jose-valero/keyspaces-janitor/internal/infra/logging"
	"github.com/jose-valero/keyspaces-janitor/internal/infra/storage"
)

// tope para abrir, migrar y consultar el ledger en el cold start
const ledgerSetupTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	proc, err := config.LoadProcess()
	log := logging.Init(logging.Options{Level: proc.LogLevel, Format: proc.LogFormat})
	if err != nil {
		// sólo afecta a extras (logs/ledger/discord); el janitor igual corre
		log.Warn("process config", "error", err)
	}

	reporters, closeAll := buildReporters(context.Background(), log, proc, defaultLedger)
	defer closeAll()

	j := service.NewJanitor(cassandra.Connector{}, log, service.WithReporters(reporters...))

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		lambda.Start(j.Handle)
		return
	}

	// corrida local, una sola vez
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	status, _ := j.Handle(ctx, events.CloudWatchEvent{Source: "local", Time: time.Now().UTC()})
	fmt.Println(status)
}

// runsLedger es lo que el cold start usa del repo de corridas.
type runsLedger interface {
	service.Reporter
	Last(ctx context.Context) (domain.Run, error)
}

// ledger agrupa el acceso a storage para poder reemplazarlo en tests.
type ledger struct {
	open    func(ctx context.Context, url string, pingTimeout time.Duration) (*sql.DB, error)
	migrate func(ctx context.Context, db *sql.DB) (int, error)
	repo    func(db *sql.DB) runsLedger
}

var defaultLedger = ledger{
	open:    storage.Open,
	migrate: storage.Migrate,
	repo:    func(db *sql.DB) runsLedger { return storage.NewRunsRepo(db) },
}

func buildReporters(ctx context.Context, log hclog.Logger, proc config.Process, l ledger) ([]service.Reporter, func()) {
	var (
		out []service.Reporter
		db  *sql.DB
	)

	if proc.LedgerEnabled() {
		ctx, cancel := context.WithTimeout(ctx, ledgerSetupTimeout)
		conn, err := l.open(ctx, proc.RunsDatabaseURL, proc.RunsDBPingTimeout)
		switch {
		case err != nil:
			log.Warn("run ledger disabled", "error", err)
		default:
			n, err := l.migrate(ctx, conn)
			if err != nil {
				log.Warn("run ledger disabled: migrate", "error", err)
				_ = conn.Close()
				break
			}
			log.Debug("run ledger ready", "migrations_applied", n)
			db = conn
			repo := l.repo(db)
			logPreviousRun(ctx, log, repo)
			out = append(out, repo)
		}
		cancel()
	}

	if proc.DiscordEnabled() {
		n, err := discord.New(proc.DiscordWebhookID, proc.DiscordWebhookToken)
		if err != nil {
			log.Warn("discord notifier disabled", "error", err)
		} else {
			out = append(out, n)
		}
	}

	return out, func() {
		if db != nil {
			_ = db.Close()
		}
	}
}

func logPreviousRun(ctx context.Context, log hclog.Logger, r runsLedger) {
	prev, err := r.Last(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Debug("no previous cleanup run recorded")
	case err != nil:
		log.Warn("previous cleanup run lookup failed", "error", err)
	default:
		log.Info("previous cleanup run",
			"run", prev.ID,
			"outcome", string(prev.Outcome),
			"started_at", prev.StartedAt.UTC().Format(time.RFC3339),
			"error", prev.Error,
		)
	}
}
