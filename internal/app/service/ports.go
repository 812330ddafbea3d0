package service

import (
	"context"

	"github.com/jose-valero/keyspaces-janitor/internal/domain"
	"github.com/jose-valero/keyspaces-janitor/internal/infra/config"
)

// Lo implementa internal/infra/cassandra.Session
type Session interface {
	Exec(ctx context.Context, stmt string, values ...any) error
	Close()
}

// Lo implementa internal/infra/cassandra.Connector
type Connector interface {
	Connect(ctx context.Context, cfg config.Cassandra) (Session, error)
}

// Lo implementan storage.RunsRepo y discord.Notifier
type Reporter interface {
	Report(ctx context.Context, run domain.Run) error
}

type ConnectorFunc func(ctx context.Context, cfg config.Cassandra) (Session, error)

func (f ConnectorFunc) Connect(ctx context.Context, cfg config.Cassandra) (Session, error) {
	return f(ctx, cfg)
}
