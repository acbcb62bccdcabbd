// Package docstore is a small document-store abstraction: JSON documents addressed by
// collection paths, with subcollections under documents, equality queries and capped
// batched writes.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxBatchWrites caps the number of writes a single Commit accepts.
const MaxBatchWrites = 500

// CreateTime orders query results by the time the store first saw a document.
const CreateTime = "__create_time__"

var (
	ErrNotFound      = errors.New("document not found")
	ErrBatchTooLarge = errors.New("write batch too large")
	ErrInvalidQuery  = errors.New("invalid query")
	ErrInvalidPath   = errors.New("invalid document path")
)

// CollectionRef addresses a collection, either top-level ("employees") or under a
// document ("einsatzplaene/<id>/entries").
type CollectionRef struct {
	path string
}

// DocumentRef addresses one document inside a collection.
type DocumentRef struct {
	Parent CollectionRef
	ID     string
}

func Collection(name string) CollectionRef {
	return CollectionRef{path: name}
}

func (c CollectionRef) Path() string { return c.path }

func (c CollectionRef) Doc(id string) DocumentRef {
	return DocumentRef{Parent: c, ID: id}
}

func (d DocumentRef) Collection(name string) CollectionRef {
	return CollectionRef{path: d.Path() + "/" + name}
}

func (d DocumentRef) Path() string { return d.Parent.path + "/" + d.ID }

// Validate rejects refs without a collection or with a blank ID.
func (d DocumentRef) Validate() error {
	if d.Parent.path == "" || strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidPath, d.Path())
	}
	return nil
}

// Snapshot is a document as read from the store.
type Snapshot struct {
	Ref        DocumentRef
	Data       json.RawMessage
	CreateTime time.Time
	UpdateTime time.Time
}

// DataTo decodes the document into v.
func (s Snapshot) DataTo(v any) error {
	if err := json.Unmarshal(s.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", s.Ref.Path(), err)
	}
	return nil
}

// Filter is an equality condition on a top-level document field.
type Filter struct {
	Field string
	Value any
}

type Query struct {
	Collection CollectionRef
	Where      []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Validate rejects queries the backends do not support.
func (q Query) Validate() error {
	if q.Collection.path == "" {
		return fmt.Errorf("%w: missing collection", ErrInvalidQuery)
	}
	if len(q.Where) > 2 {
		return fmt.Errorf("%w: at most two equality filters, got %d", ErrInvalidQuery, len(q.Where))
	}
	for _, f := range q.Where {
		if f.Field == "" {
			return fmt.Errorf("%w: empty filter field", ErrInvalidQuery)
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidQuery)
	}
	return nil
}

// Write is one pending document write.
type Write struct {
	Ref  DocumentRef
	Data json.RawMessage
}

// WriteBatch collects writes that a store commits atomically.
type WriteBatch struct {
	writes []Write
	err    error
}

func NewBatch() *WriteBatch {
	return &WriteBatch{}
}

// Set queues a full overwrite of ref with v encoded as JSON. Encoding errors are
// reported by Commit.
func (b *WriteBatch) Set(ref DocumentRef, v any) *WriteBatch {
	if b.err != nil {
		return b
	}
	if err := ref.Validate(); err != nil {
		b.err = err
		return b
	}
	data, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("encode %s: %w", ref.Path(), err)
		return b
	}
	b.writes = append(b.writes, Write{Ref: ref, Data: data})
	return b
}

func (b *WriteBatch) Len() int { return len(b.writes) }

// Writes returns the queued writes, or the first error Set recorded.
func (b *WriteBatch) Writes() ([]Write, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.writes) > MaxBatchWrites {
		return nil, fmt.Errorf("%w: %d writes, max %d", ErrBatchTooLarge, len(b.writes), MaxBatchWrites)
	}
	return b.writes, nil
}

// Store is implemented by every backend.
type Store interface {
	Get(ctx context.Context, ref DocumentRef) (Snapshot, error)
	Find(ctx context.Context, q Query) ([]Snapshot, error)
	Set(ctx context.Context, ref DocumentRef, v any) error
	Commit(ctx context.Context, b *WriteBatch) error
}

// EncodeValue renders a filter value the way it appears inside a stored document.
func EncodeValue(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode filter value: %v", ErrInvalidQuery, err)
	}
	return b, nil
}
