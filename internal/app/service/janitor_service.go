package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gocql/gocql"
	"github.com/hashicorp/go-hclog"

	"github.com/jose-valero/keyspaces-janitor/internal/domain"
	"github.com/jose-valero/keyspaces-janitor/internal/infra/config"
)

var (
	ErrConnect = errors.New("cassandra connect")
	ErrCleanup = errors.New("cleanup query")
)

const reportTimeout = 5 * time.Second

type Janitor struct {
	connector Connector
	reporters []Reporter
	log       hclog.Logger
	now       func() time.Time
	newID     func() string
	load      func() (config.Config, error)
}

type Option func(*Janitor)

func WithReporters(r ...Reporter) Option {
	return func(j *Janitor) { j.reporters = append(j.reporters, r...) }
}

func WithClock(now func() time.Time) Option {
	return func(j *Janitor) { j.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(j *Janitor) { j.newID = f }
}

// WithConfigLoader reemplaza config.Load (tests, corridas locales con overrides).
func WithConfigLoader(f func() (config.Config, error)) Option {
	return func(j *Janitor) { j.load = f }
}

func NewJanitor(c Connector, log hclog.Logger, opts ...Option) *Janitor {
	if log == nil {
		log = hclog.Default()
	}
	j := &Janitor{
		connector: c,
		log:       log,
		now:       time.Now,
		newID:     func() string { return gocql.TimeUUID().String() },
		load:      config.Load,
	}
	for _, o := range opts {
		o(j)
	}
	return j
}

// Handle es el entrypoint de Lambda. Nunca devuelve error: el resultado
// queda en los logs (y en los reporters, si hay).
func (j *Janitor) Handle(ctx context.Context, evt events.CloudWatchEvent) (string, error) {
	run := j.Run(ctx, evt)
	j.report(ctx, run)
	return run.Outcome.Status(), nil
}

// Run hace la limpieza: config -> sesión -> DELETE -> cierre.
// Un panic en cualquier fase (loader, driver, Close) se convierte en el
// resultado de esa fase; nunca sale de Run.
func (j *Janitor) Run(ctx context.Context, evt events.CloudWatchEvent) (run domain.Run) {
	// resultado si algo entra en pánico ahora; vacío = ya terminó bien
	failAs := domain.OutcomeConfigError
	defer func() {
		if r := recover(); r != nil {
			j.recovered(&run, failAs, r)
		}
		run.FinishedAt = j.now()
	}()

	run = domain.Run{
		ID:        j.runID(ctx),
		Trigger:   evt.ID,
		Source:    evt.Source,
		StartedAt: j.now(),
	}
	if run.Trigger == "" {
		run.Trigger = "local"
	}

	cfg, err := j.load()
	run.ContactPoints = cfg.Cassandra.ContactPoints
	run.Keyspace = cfg.Cassandra.Keyspace
	run.Table = cfg.Cleanup.Table
	if err != nil {
		var cerr *config.Error
		if errors.As(err, &cerr) && cerr.MissingConnection() {
			j.log.Error("Missing required Cassandra connection environment variables.", "missing", cerr.Missing, "error", err)
		} else {
			j.log.Error("Invalid cleanup configuration.", "error", err)
		}
		run.Outcome, run.Error = domain.OutcomeConfigError, err.Error()
		return run
	}
	q := cfg.PurgeQuery()

	failAs = domain.OutcomeConnectFailed
	sess, err := j.connector.Connect(ctx, cfg.Cassandra)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConnect, err)
		j.log.Error(fmt.Sprintf("Cleanup failed: %v", err), "hosts", cfg.Cassandra.ContactPoints, "keyspace", q.Keyspace)
		run.Outcome, run.Error = domain.OutcomeConnectFailed, err.Error()
		return run
	}
	defer sess.Close()

	j.log.Info("Connected to Cassandra. Running cleanup query.", "keyspace", q.Keyspace, "table", q.Table)

	failAs = domain.OutcomeQueryFailed
	threshold := q.Threshold(j.now())
	run.Threshold = &threshold
	if err := sess.Exec(ctx, q.CQL(), threshold); err != nil {
		j.log.Error(fmt.Sprintf("Cleanup failed: %v", err), "table", q.Table, "threshold", threshold)
		run.Outcome, run.Error = domain.OutcomeQueryFailed, fmt.Errorf("%w: %w", ErrCleanup, err).Error()
		return run
	}

	failAs = ""
	j.log.Info("Cleanup successful.", "table", q.Table, "threshold", threshold)
	run.Outcome = domain.OutcomeSucceeded
	return run
}

func (j *Janitor) recovered(run *domain.Run, failAs domain.Outcome, r any) {
	perr := fmt.Errorf("panic: %v", r)
	switch failAs {
	case "":
		// el DELETE ya se aplicó; sólo falló el cierre de la sesión
		j.log.Warn("Closing Cassandra session failed.", "run", run.ID, "error", perr)
		return
	case domain.OutcomeConnectFailed:
		perr = fmt.Errorf("%w: %w", ErrConnect, perr)
		j.log.Error(fmt.Sprintf("Cleanup failed: %v", perr), "run", run.ID)
		run.Error = perr.Error()
	case domain.OutcomeQueryFailed:
		j.log.Error(fmt.Sprintf("Cleanup failed: %v", perr), "run", run.ID)
		run.Error = fmt.Errorf("%w: %w", ErrCleanup, perr).Error()
	default:
		j.log.Error("Invalid cleanup configuration.", "run", run.ID, "error", perr)
		run.Error = perr.Error()
	}
	run.Outcome = failAs
}

func (j *Janitor) report(ctx context.Context, run domain.Run) {
	for _, r := range j.reporters {
		rctx, cancel := context.WithTimeout(ctx, reportTimeout)
		if err := r.Report(rctx, run); err != nil {
			j.log.Warn("report failed", "reporter", fmt.Sprintf("%T", r), "run", run.ID, "error", err)
		}
		cancel()
	}
}

func (j *Janitor) runID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return j.newID()
}
