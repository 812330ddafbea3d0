//go:build integration

package cassandra_test

import (
	"context"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/keyspaces-janitor/internal/infra/cassandra"
)

func TestSessionRangeDelete(t *testing.T) {
	ctx := context.Background()
	s, err := cassandra.Connector{}.Connect(ctx, testCfg)
	require.NoError(t, err)
	defer s.Close()

	now := time.Now().UTC().Truncate(time.Millisecond)
	old := now.Add(-31 * 24 * time.Hour)
	fresh := now.Add(-time.Hour)

	for _, ts := range []time.Time{old, fresh} {
		require.NoError(t, s.Exec(ctx, `INSERT INTO events (bucket, created_at, payload) VALUES (?, ?, ?)`, "b1", ts, "x"))
	}

	threshold := now.Add(-30 * 24 * time.Hour)
	require.NoError(t, s.Exec(ctx, `DELETE FROM events WHERE bucket = ? AND created_at < ?`, "b1", threshold))

	var left []time.Time
	gs, err := cassandra.NewCluster(testCfg).CreateSession()
	require.NoError(t, err)
	defer gs.Close()

	iter := gs.Query(`SELECT created_at FROM events WHERE bucket = ?`, "b1").WithContext(ctx).Iter()
	var ts time.Time
	for iter.Scan(&ts) {
		left = append(left, ts.UTC())
	}
	require.NoError(t, iter.Close())
	assert.Equal(t, []time.Time{fresh}, left)
}

func TestSessionInvalidQueryReturnsError(t *testing.T) {
	ctx := context.Background()
	s, err := cassandra.Connector{}.Connect(ctx, testCfg)
	require.NoError(t, err)
	defer s.Close()

	// sin partition key Cassandra rechaza el DELETE por rango
	err = s.Exec(ctx, `DELETE FROM events WHERE created_at < ?`, time.Now())
	require.Error(t, err)
	var reqErr gocql.RequestError
	assert.ErrorAs(t, err, &reqErr)
}

func TestConnectUnknownKeyspace(t *testing.T) {
	cfg := testCfg
	cfg.Keyspace = "does_not_exist"

	_, err := cassandra.Connect(context.Background(), cfg)
	assert.Error(t, err)
}
