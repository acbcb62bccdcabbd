package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/utilization/pkg/docstore"
)

type member struct {
	IdentityKey string `json:"identityKey"`
	OrgUnit     string `json:"orgUnit"`
	Week        int    `json:"week,omitempty"`
}

func TestStore_SetGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	ref := docstore.Collection("employees").Doc("e1")

	_, err := s.Get(ctx, ref)
	require.ErrorIs(t, err, docstore.ErrNotFound)

	require.NoError(t, s.Set(ctx, ref, member{IdentityKey: "mueller|hans", OrgUnit: "IT"}))
	snap, err := s.Get(ctx, ref)
	require.NoError(t, err)

	var got member
	require.NoError(t, snap.DataTo(&got))
	require.Equal(t, "mueller|hans", got.IdentityKey)
	require.Equal(t, 1, s.Commits())
}

func TestStore_OverwriteKeepsCreateTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC)
	s := New().WithClock(func() time.Time { return now })
	ref := docstore.Collection("employees").Doc("e1")

	require.NoError(t, s.Set(ctx, ref, member{OrgUnit: "IT"}))
	now = now.Add(time.Hour)
	require.NoError(t, s.Set(ctx, ref, member{OrgUnit: "HR"}))

	snap, err := s.Get(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC), snap.CreateTime)
	require.Equal(t, now, snap.UpdateTime)
	require.JSONEq(t, `{"identityKey":"","orgUnit":"HR"}`, string(snap.Data))
}

func TestStore_FindEqualityFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	coll := docstore.Collection("employees")
	batch := docstore.NewBatch().
		Set(coll.Doc("e1"), member{IdentityKey: "mueller|hans", OrgUnit: "IT Services"}).
		Set(coll.Doc("e2"), member{IdentityKey: "mueller|hans", OrgUnit: "IT Services"}).
		Set(coll.Doc("e3"), member{IdentityKey: "mueller|hans", OrgUnit: "it services"}).
		Set(coll.Doc("e4"), member{IdentityKey: "doe|jane", OrgUnit: "IT Services"})
	require.NoError(t, s.Commit(ctx, batch))

	hits, err := s.Find(ctx, docstore.Query{
		Collection: coll,
		Where: []docstore.Filter{
			{Field: "identityKey", Value: "mueller|hans"},
			{Field: "orgUnit", Value: "IT Services"},
		},
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "e1", hits[0].Ref.ID)
	require.Equal(t, "e2", hits[1].Ref.ID)

	_, err = s.Find(ctx, docstore.Query{Collection: coll, Where: []docstore.Filter{{}, {}, {}}})
	require.ErrorIs(t, err, docstore.ErrInvalidQuery)
}

func TestStore_FindLatestByCreateTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC)
	s := New().WithClock(func() time.Time { return now })
	plans := docstore.Collection("einsatzplaene")

	require.NoError(t, s.Set(ctx, plans.Doc("zzz"), member{Week: 33}))
	now = now.Add(time.Minute)
	require.NoError(t, s.Set(ctx, plans.Doc("aaa"), member{Week: 34}))
	// Same timestamp: insertion order breaks the tie.
	require.NoError(t, s.Set(ctx, plans.Doc("mmm"), member{Week: 35}))

	hits, err := s.Find(ctx, docstore.Query{Collection: plans, OrderBy: docstore.CreateTime, Descending: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "mmm", hits[0].Ref.ID)

	hits, err = s.Find(ctx, docstore.Query{Collection: plans, OrderBy: "week"})
	require.NoError(t, err)
	require.Equal(t, "zzz", hits[0].Ref.ID)
	require.Equal(t, "mmm", hits[2].Ref.ID)
}

func TestStore_CommitIsAllOrNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	s.FailCommit = func(b *docstore.WriteBatch) error {
		if b.Len() > 1 {
			return errors.New("quota exceeded")
		}
		return nil
	}
	coll := docstore.Collection("entries")

	err := s.Commit(ctx, docstore.NewBatch().Set(coll.Doc("a"), member{}).Set(coll.Doc("b"), member{}))
	require.EqualError(t, err, "quota exceeded")
	require.Equal(t, 0, s.Len(coll))
	require.Equal(t, 0, s.Commits())

	big := docstore.NewBatch()
	for i := 0; i <= docstore.MaxBatchWrites; i++ {
		big.Set(coll.Doc(fmt.Sprintf("e%d", i)), member{})
	}
	s.FailCommit = nil
	require.ErrorIs(t, s.Commit(ctx, big), docstore.ErrBatchTooLarge)
	require.Equal(t, 0, s.Len(coll))
}

func TestStore_SubcollectionsAreSeparate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	plan := docstore.Collection("auslastungen").Doc("p1")
	entries := plan.Collection("entries")

	require.NoError(t, s.Set(ctx, plan, member{}))
	require.NoError(t, s.Set(ctx, entries.Doc("mueller|hans|IT"), member{}))

	require.Equal(t, 1, s.Len(docstore.Collection("auslastungen")))
	require.Equal(t, 1, s.Len(entries))
	require.Equal(t, []string{"auslastungen", "auslastungen/p1/entries"}, s.Collections())
}

func TestWriteBatch_RejectsBlankID(t *testing.T) {
	t.Parallel()

	s := New()
	err := s.Commit(context.Background(), docstore.NewBatch().Set(docstore.Collection("x").Doc("  "), member{}))
	require.ErrorIs(t, err, docstore.ErrInvalidPath)
}
