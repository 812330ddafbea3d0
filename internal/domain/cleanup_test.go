package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/keyspaces-janitor/internal/domain"
)

func TestDefaultRetentionIsThirtyDaysInMillis(t *testing.T) {
	assert.Equal(t, int64(2592000000), domain.DefaultRetention.Milliseconds())
}

func TestPurgeQueryValidate(t *testing.T) {
	valid := domain.PurgeQuery{Keyspace: "app", Table: "events", Column: "created_at", Retention: domain.DefaultRetention}

	cases := []struct {
		desc  string
		query func(q domain.PurgeQuery) domain.PurgeQuery
		err   error
	}{
		{
			desc:  "valid query",
			query: func(q domain.PurgeQuery) domain.PurgeQuery { return q },
		},
		{
			desc:  "empty table",
			query: func(q domain.PurgeQuery) domain.PurgeQuery { q.Table = ""; return q },
			err:   domain.ErrInvalidIdentifier,
		},
		{
			desc:  "injection in column",
			query: func(q domain.PurgeQuery) domain.PurgeQuery { q.Column = "ts < now(); DROP TABLE x; --"; return q },
			err:   domain.ErrInvalidIdentifier,
		},
		{
			desc:  "qualified table name",
			query: func(q domain.PurgeQuery) domain.PurgeQuery { q.Table = "other.events"; return q },
			err:   domain.ErrInvalidIdentifier,
		},
		{
			desc:  "keyspace starting with digit",
			query: func(q domain.PurgeQuery) domain.PurgeQuery { q.Keyspace = "1app"; return q },
			err:   domain.ErrInvalidIdentifier,
		},
		{
			desc:  "identifier longer than 48 chars",
			query: func(q domain.PurgeQuery) domain.PurgeQuery { q.Table = strings.Repeat("t", 49); return q },
			err:   domain.ErrInvalidIdentifier,
		},
		{
			desc:  "zero retention",
			query: func(q domain.PurgeQuery) domain.PurgeQuery { q.Retention = 0; return q },
			err:   domain.ErrInvalidRetention,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			err := tc.query(valid).Validate()
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestPurgeQueryCQL(t *testing.T) {
	q := domain.PurgeQuery{Keyspace: "app", Table: "events", Column: "created_at", Retention: time.Hour}
	assert.Equal(t, "DELETE FROM events WHERE created_at < ?", q.CQL())
	assert.NotContains(t, q.CQL(), "app", "keyspace comes from the session")
}

func TestPurgeQueryThreshold(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	q := domain.PurgeQuery{Table: "events", Column: "ts", Retention: domain.DefaultRetention}

	got := q.Threshold(now)
	require.Equal(t, time.Date(2026, 9, 19, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, int64(2592000000), now.Sub(got).Milliseconds())
}

func TestOutcomeStatus(t *testing.T) {
	cases := map[domain.Outcome]string{
		domain.OutcomeSucceeded:     "ok",
		domain.OutcomeConfigError:   "config error",
		domain.OutcomeConnectFailed: "connect failed",
		domain.OutcomeQueryFailed:   "cleanup failed",
	}
	for o, want := range cases {
		assert.Equal(t, want, o.Status(), string(o))
		assert.Equal(t, o == domain.OutcomeSucceeded, o.OK(), string(o))
	}
}

func TestRunDuration(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Zero(t, domain.Run{StartedAt: start}.Duration())
	assert.Equal(t, 1500*time.Millisecond, domain.Run{StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond)}.Duration())
}
