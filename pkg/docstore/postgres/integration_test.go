//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/utilization/pkg/docstore"
)

func TestStore_Integration_CommitFindLatest(t *testing.T) {
	dsn := os.Getenv("DOCSTORE_TEST_DSN")
	if dsn == "" {
		t.Skip("DOCSTORE_TEST_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, Migrate(ctx, pool))

	store := New(pool)
	plans := docstore.Collection("it_plans_" + uuid.NewString()[:8])

	first := plans.Doc("a")
	require.NoError(t, store.Set(ctx, first, map[string]any{"n": 1}))
	second := plans.Doc("b")
	require.NoError(t, store.Commit(ctx, docstore.NewBatch().
		Set(second, map[string]any{"n": 2}).
		Set(second.Collection("entries").Doc("mueller|hans|IT Services"), map[string]any{"orgUnit": "IT Services"})))

	snap, err := store.Get(ctx, second)
	require.NoError(t, err)
	require.JSONEq(t, `{"n":2}`, string(snap.Data))

	_, err = store.Get(ctx, plans.Doc("missing"))
	require.ErrorIs(t, err, docstore.ErrNotFound)

	latest, err := store.Find(ctx, docstore.Query{Collection: plans, OrderBy: docstore.CreateTime, Descending: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, "b", latest[0].Ref.ID)

	hits, err := store.Find(ctx, docstore.Query{
		Collection: second.Collection("entries"),
		Where:      []docstore.Filter{{Field: "orgUnit", Value: "IT Services"}},
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "mueller|hans|IT Services", hits[0].Ref.ID)
}
