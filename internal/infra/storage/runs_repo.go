package storage

import (
	"context"
	"database/sql"

	pq "github.com/lib/pq"

	"github.com/jose-valero/keyspaces-janitor/internal/domain"
)

type RunsRepo struct{ db *sql.DB }

func NewRunsRepo(db *sql.DB) *RunsRepo { return &RunsRepo{db: db} }

// Report guarda la corrida. Reintentos de Lambda con el mismo request id
// pisan la fila anterior.
func (r *RunsRepo) Report(ctx context.Context, run domain.Run) error {
	hosts := run.ContactPoints
	if hosts == nil {
		hosts = []string{}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO cleanup_runs
  (run_id, trigger_id, source, started_at, finished_at, keyspace_name, table_name, threshold, contact_points, outcome, error)
VALUES
  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (run_id) DO UPDATE SET
  trigger_id     = EXCLUDED.trigger_id,
  source         = EXCLUDED.source,
  started_at     = EXCLUDED.started_at,
  finished_at    = EXCLUDED.finished_at,
  keyspace_name  = EXCLUDED.keyspace_name,
  table_name     = EXCLUDED.table_name,
  threshold      = EXCLUDED.threshold,
  contact_points = EXCLUDED.contact_points,
  outcome        = EXCLUDED.outcome,
  error          = EXCLUDED.error
`, run.ID, run.Trigger, run.Source, run.StartedAt, run.FinishedAt, run.Keyspace, run.Table,
		run.Threshold, pq.Array(hosts), string(run.Outcome), nullIfEmpty(run.Error))
	return err
}

// Last devuelve la corrida más reciente.
func (r *RunsRepo) Last(ctx context.Context) (domain.Run, error) {
	var (
		run     domain.Run
		outcome string
		errText sql.NullString
		thr     sql.NullTime
		hosts   pq.StringArray
	)
	err := r.db.QueryRowContext(ctx, `
SELECT run_id, trigger_id, source, started_at, finished_at, keyspace_name, table_name,
       threshold, contact_points, outcome, error
  FROM cleanup_runs
 ORDER BY started_at DESC
 LIMIT 1
`).Scan(&run.ID, &run.Trigger, &run.Source, &run.StartedAt, &run.FinishedAt, &run.Keyspace, &run.Table,
		&thr, &hosts, &outcome, &errText)
	if err == sql.ErrNoRows {
		return domain.Run{}, ErrNotFound
	}
	if err != nil {
		return domain.Run{}, err
	}
	run.Outcome = domain.Outcome(outcome)
	run.Error = errText.String
	run.ContactPoints = []string(hosts)
	if thr.Valid {
		t := thr.Time
		run.Threshold = &t
	}
	return run, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
