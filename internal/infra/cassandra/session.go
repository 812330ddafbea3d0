package cassandra

import (
	"context"

	"github.com/gocql/gocql"

	"github.com/jose-valero/keyspaces-janitor/internal/app/service"
)

var _ service.Session = (*Session)(nil)

type Session struct {
	s *gocql.Session
}

func (s *Session) Exec(ctx context.Context, stmt string, values ...any) error {
	return s.s.Query(stmt, values...).WithContext(ctx).Exec()
}

// Close es idempotente (gocql ya lo es).
func (s *Session) Close() {
	s.s.Close()
}
