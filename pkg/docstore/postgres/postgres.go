// Package postgres stores docstore documents as JSONB rows in a single documents table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/utilization/pkg/docstore"
)

const (
	selectDocumentSQL = `SELECT data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`
	upsertDocumentSQL = `INSERT INTO documents (collection, id, data)
VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, ref docstore.DocumentRef) (docstore.Snapshot, error) {
	snap := docstore.Snapshot{Ref: ref}
	var data []byte
	err := s.pool.QueryRow(ctx, selectDocumentSQL, ref.Parent.Path(), ref.ID).
		Scan(&data, &snap.CreateTime, &snap.UpdateTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return docstore.Snapshot{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Snapshot{}, gerrors.Wrap(err, "get "+ref.Path())
	}
	snap.Data = data
	return snap, nil
}

func (s *Store) Find(ctx context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	sql, args, err := buildFind(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "find in "+q.Collection.Path())
	}
	defer rows.Close()

	var out []docstore.Snapshot
	for rows.Next() {
		var (
			id   string
			data []byte
			snap docstore.Snapshot
		)
		if err := rows.Scan(&id, &data, &snap.CreateTime, &snap.UpdateTime); err != nil {
			return nil, gerrors.Wrap(err, "scan document")
		}
		snap.Ref = q.Collection.Doc(id)
		snap.Data = data
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "find in "+q.Collection.Path())
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, ref docstore.DocumentRef, v any) error {
	return s.Commit(ctx, docstore.NewBatch().Set(ref, v))
}

// Commit sends every write of b in one pgx batch inside one transaction.
func (s *Store) Commit(ctx context.Context, b *docstore.WriteBatch) (err error) {
	writes, err := b.Writes()
	if err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return gerrors.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	batch := &pgx.Batch{}
	for _, w := range writes {
		batch.Queue(upsertDocumentSQL, w.Ref.Parent.Path(), w.Ref.ID, string(w.Data))
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return gerrors.Wrap(err, "write batch")
	}
	if err = tx.Commit(ctx); err != nil {
		return gerrors.Wrap(err, "commit tx")
	}
	return nil
}

func buildFind(q docstore.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	args := []any{q.Collection.Path()}
	sb.WriteString("SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1")

	for _, f := range q.Where {
		v, err := docstore.EncodeValue(f.Value)
		if err != nil {
			return "", nil, err
		}
		args = append(args, f.Field, string(v))
		fmt.Fprintf(&sb, " AND data -> $%d = $%d::jsonb", len(args)-1, len(args))
	}

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	switch q.OrderBy {
	case "":
		fmt.Fprintf(&sb, " ORDER BY id %s", dir)
	case docstore.CreateTime:
		fmt.Fprintf(&sb, " ORDER BY created_at %s, seq %s", dir, dir)
	default:
		args = append(args, q.OrderBy)
		fmt.Fprintf(&sb, " ORDER BY data -> $%d %s, id %s", len(args), dir, dir)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	return sb.String(), args, nil
}
