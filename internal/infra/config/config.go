package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v7"
	"github.com/gocql/gocql"
	"github.com/hashicorp/go-multierror"

	"github.com/jose-valero/keyspaces-janitor/internal/domain"
)

// Las tres variables sin las cuales no hay conexión posible.
const (
	EnvContactPoints = "CASSANDRA_CONTACT_POINTS"
	EnvUsername      = "CASSANDRA_USERNAME"
	EnvPassword      = "CASSANDRA_PASSWORD"
)

type Cassandra struct {
	ContactPoints []string      `env:"CASSANDRA_CONTACT_POINTS" envSeparator:","`
	Username      string        `env:"CASSANDRA_USERNAME"`
	Password      string        `env:"CASSANDRA_PASSWORD"`
	Keyspace      string        `env:"CASSANDRA_KEYSPACE"`
	Port          int           `env:"CASSANDRA_PORT"        envDefault:"9042"`
	Consistency   string        `env:"CASSANDRA_CONSISTENCY" envDefault:"LOCAL_QUORUM"`
	Timeout       time.Duration `env:"CASSANDRA_TIMEOUT"     envDefault:"10s"`
	TLS           bool          `env:"CASSANDRA_TLS"         envDefault:"false"`
	TLSCAFile     string        `env:"CASSANDRA_TLS_CA_FILE"`
}

// ParsedConsistency asume que Validate ya pasó.
func (c Cassandra) ParsedConsistency() gocql.Consistency {
	cons, err := gocql.ParseConsistencyWrapper(c.Consistency)
	if err != nil {
		return gocql.LocalQuorum
	}
	return cons
}

type Cleanup struct {
	Table     string        `env:"CLEANUP_TABLE"`
	Column    string        `env:"CLEANUP_TIMESTAMP_COLUMN"`
	Retention time.Duration `env:"CLEANUP_RETENTION" envDefault:"720h"`
}

// Config se lee en cada invocación (no en el cold start).
type Config struct {
	Cassandra Cassandra
	Cleanup   Cleanup
}

func (c Config) PurgeQuery() domain.PurgeQuery {
	return domain.PurgeQuery{
		Keyspace:  c.Cassandra.Keyspace,
		Table:     c.Cleanup.Table,
		Column:    c.Cleanup.Column,
		Retention: c.Cleanup.Retention,
	}
}

// Load lee y valida el entorno. Si falla devuelve *Error junto con lo que
// se alcanzó a parsear; los errores de parseo y los de validación van juntos.
func Load() (Config, error) {
	var cfg Config
	var parsed *multierror.Error
	failed := map[string]bool{}
	if err := env.Parse(&cfg); err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) {
			for _, e := range agg.Errors {
				parsed = multierror.Append(parsed, e)
				var pe env.ParseError
				if errors.As(e, &pe) {
					failed[pe.Name] = true
				}
			}
		} else {
			parsed = multierror.Append(parsed, err)
		}
	}
	cfg.Cassandra.ContactPoints = splitHosts(cfg.Cassandra.ContactPoints)
	return cfg, cfg.validate(parsed, failed)
}

func (c Config) Validate() error { return c.validate(nil, nil) }

// validate suma sus problemas a merr. Los campos en failed no se parsearon,
// así que no se chequea su rango (ya están reportados).
func (c Config) validate(merr *multierror.Error, failed map[string]bool) error {
	var missing []string

	req := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
			merr = multierror.Append(merr, fmt.Errorf("%s is not set", name))
		}
	}
	if len(c.Cassandra.ContactPoints) == 0 {
		missing = append(missing, EnvContactPoints)
		merr = multierror.Append(merr, fmt.Errorf("%s is empty", EnvContactPoints))
	}
	req(EnvUsername, strings.TrimSpace(c.Cassandra.Username))
	// el password se toma tal cual: sólo vacío cuenta como faltante
	req(EnvPassword, c.Cassandra.Password)
	req("CASSANDRA_KEYSPACE", strings.TrimSpace(c.Cassandra.Keyspace))
	req("CLEANUP_TABLE", strings.TrimSpace(c.Cleanup.Table))
	req("CLEANUP_TIMESTAMP_COLUMN", strings.TrimSpace(c.Cleanup.Column))

	ident := func(name, v string) {
		if strings.TrimSpace(v) != "" && !domain.ValidIdentifier(v) {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w %q", name, domain.ErrInvalidIdentifier, v))
		}
	}
	ident("CASSANDRA_KEYSPACE", c.Cassandra.Keyspace)
	ident("CLEANUP_TABLE", c.Cleanup.Table)
	ident("CLEANUP_TIMESTAMP_COLUMN", c.Cleanup.Column)

	if !failed["Retention"] && c.Cleanup.Retention <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("CLEANUP_RETENTION: %w", domain.ErrInvalidRetention))
	}
	if !failed["Port"] && (c.Cassandra.Port <= 0 || c.Cassandra.Port > 65535) {
		merr = multierror.Append(merr, fmt.Errorf("CASSANDRA_PORT out of range: %d", c.Cassandra.Port))
	}
	if _, err := gocql.ParseConsistencyWrapper(c.Cassandra.Consistency); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("CASSANDRA_CONSISTENCY: %w", err))
	}
	if !failed["Timeout"] && c.Cassandra.Timeout <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("CASSANDRA_TIMEOUT must be positive"))
	}
	if c.Cassandra.TLSCAFile != "" && !c.Cassandra.TLS {
		merr = multierror.Append(merr, fmt.Errorf("CASSANDRA_TLS_CA_FILE set but CASSANDRA_TLS is false"))
	}

	if merr.ErrorOrNil() == nil {
		return nil
	}
	return newError(missing, merr)
}

// "a, ,b," -> [a b]
func splitHosts(in []string) []string {
	var out []string
	for _, h := range in {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
