package cassandra

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/jose-valero/keyspaces-janitor/internal/app/service"
	"github.com/jose-valero/keyspaces-janitor/internal/infra/config"
)

var _ service.Connector = Connector{}

// Connector abre una sesión gocql por invocación.
type Connector struct{}

func (Connector) Connect(ctx context.Context, cfg config.Cassandra) (service.Session, error) {
	s, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewCluster arma la configuración del cluster sin conectarse.
func NewCluster(cfg config.Cassandra) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.ContactPoints...)
	cluster.Keyspace = cfg.Keyspace
	if cfg.Port > 0 {
		cluster.Port = cfg.Port
	}
	cluster.Consistency = cfg.ParsedConsistency()
	cluster.Authenticator = gocql.PasswordAuthenticator{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
		cluster.ConnectTimeout = cfg.Timeout
	}
	if cfg.TLS {
		// sin CA file se usan las raíces del sistema
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 cfg.TLSCAFile,
			EnableHostVerification: true,
		}
	}
	return cluster
}

// Connect establece la sesión. ctx sólo se respeta antes de empezar:
// gocql no acepta contexto en CreateSession.
func Connect(ctx context.Context, cfg config.Cassandra) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := NewCluster(cfg).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &Session{s: s}, nil
}
