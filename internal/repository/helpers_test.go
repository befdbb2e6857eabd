//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func newIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)
	return pool
}

func mustExec(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) {
	t.Helper()
	_, err := pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}
