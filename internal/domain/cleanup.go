package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// DefaultRetention son 2.592.000.000 ms (30 días).
const DefaultRetention = 30 * 24 * time.Hour

var (
	ErrInvalidIdentifier = errors.New("invalid CQL identifier")
	ErrInvalidRetention  = errors.New("retention must be positive")
)

// identificadores CQL sin comillas (máx. 48 chars, límite de Cassandra)
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,47}$`)

func ValidIdentifier(s string) bool { return identRe.MatchString(s) }

// PurgeQuery describe el DELETE por antigüedad. Keyspace no va en el CQL:
// la sesión ya queda atada a él.
type PurgeQuery struct {
	Keyspace  string
	Table     string
	Column    string
	Retention time.Duration
}

func (q PurgeQuery) Validate() error {
	for _, id := range []struct{ name, val string }{
		{"keyspace", q.Keyspace},
		{"table", q.Table},
		{"column", q.Column},
	} {
		if !ValidIdentifier(id.val) {
			return fmt.Errorf("%w: %s %q", ErrInvalidIdentifier, id.name, id.val)
		}
	}
	if q.Retention <= 0 {
		return ErrInvalidRetention
	}
	return nil
}

func (q PurgeQuery) CQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s < ?", q.Table, q.Column)
}

// Threshold: filas con timestamp anterior a esto se borran.
func (q PurgeQuery) Threshold(now time.Time) time.Time {
	return now.Add(-q.Retention)
}
