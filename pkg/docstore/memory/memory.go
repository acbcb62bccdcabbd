// Package memory is an in-process docstore backend for tests and dry runs.
package memory

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iota-uz/utilization/pkg/docstore"
)

type document struct {
	data       json.RawMessage
	createTime time.Time
	updateTime time.Time
	seq        uint64
}

// Store keeps documents in maps keyed by collection path and document ID.
type Store struct {
	mu    sync.RWMutex
	colls map[string]map[string]*document
	seq   uint64
	now   func() time.Time

	// FailCommit, when set, is consulted before every Commit; a non-nil return aborts it.
	FailCommit func(b *docstore.WriteBatch) error
	commits    int
}

func New() *Store {
	return &Store{
		colls: map[string]map[string]*document{},
		now:   time.Now,
	}
}

// WithClock replaces the clock used for create/update times.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Commits returns how many batches were committed successfully.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// Len returns the number of documents in a collection.
func (s *Store) Len(c docstore.CollectionRef) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.colls[c.Path()])
}

// Collections lists every collection path holding at least one document.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.colls))
	for path, docs := range s.colls {
		if len(docs) > 0 {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) Get(ctx context.Context, ref docstore.DocumentRef) (docstore.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.colls[ref.Parent.Path()][ref.ID]
	if !ok {
		return docstore.Snapshot{}, docstore.ErrNotFound
	}
	return snapshot(ref, doc), nil
}

func (s *Store) Find(ctx context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	want := make([]json.RawMessage, len(q.Where))
	for i, f := range q.Where {
		v, err := docstore.EncodeValue(f.Value)
		if err != nil {
			return nil, err
		}
		want[i] = v
	}

	s.mu.RLock()
	type hit struct {
		snap   docstore.Snapshot
		fields map[string]json.RawMessage
		seq    uint64
	}
	var hits []hit
	for id, doc := range s.colls[q.Collection.Path()] {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(doc.data, &fields); err != nil {
			continue
		}
		if !matches(fields, q.Where, want) {
			continue
		}
		hits = append(hits, hit{snap: snapshot(q.Collection.Doc(id), doc), fields: fields, seq: doc.seq})
	}
	s.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		var c int
		switch q.OrderBy {
		case "":
			c = strings.Compare(a.snap.Ref.ID, b.snap.Ref.ID)
		case docstore.CreateTime:
			c = a.snap.CreateTime.Compare(b.snap.CreateTime)
			if c == 0 {
				c = cmp.Compare(a.seq, b.seq)
			}
		default:
			c = compareJSON(a.fields[q.OrderBy], b.fields[q.OrderBy])
		}
		if q.Descending {
			return c > 0
		}
		return c < 0
	})

	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	out := make([]docstore.Snapshot, len(hits))
	for i, h := range hits {
		out[i] = h.snap
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, ref docstore.DocumentRef, v any) error {
	return s.Commit(ctx, docstore.NewBatch().Set(ref, v))
}

// Commit applies every write of b or none of them.
func (s *Store) Commit(ctx context.Context, b *docstore.WriteBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	writes, err := b.Writes()
	if err != nil {
		return err
	}
	if s.FailCommit != nil {
		if err := s.FailCommit(b); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, w := range writes {
		path := w.Ref.Parent.Path()
		docs, ok := s.colls[path]
		if !ok {
			docs = map[string]*document{}
			s.colls[path] = docs
		}
		s.seq++
		if existing, ok := docs[w.Ref.ID]; ok {
			existing.data = append(json.RawMessage(nil), w.Data...)
			existing.updateTime = now
			continue
		}
		docs[w.Ref.ID] = &document{
			data:       append(json.RawMessage(nil), w.Data...),
			createTime: now,
			updateTime: now,
			seq:        s.seq,
		}
	}
	s.commits++
	return nil
}

func snapshot(ref docstore.DocumentRef, doc *document) docstore.Snapshot {
	return docstore.Snapshot{
		Ref:        ref,
		Data:       append(json.RawMessage(nil), doc.data...),
		CreateTime: doc.createTime,
		UpdateTime: doc.updateTime,
	}
}

func matches(fields map[string]json.RawMessage, where []docstore.Filter, want []json.RawMessage) bool {
	for i, f := range where {
		got, ok := fields[f.Field]
		if !ok {
			return false
		}
		if !jsonEqual(got, want[i]) {
			return false
		}
	}
	return true
}

func jsonEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if err := json.Compact(&ca, a); err != nil {
		return false
	}
	if err := json.Compact(&cb, b); err != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// compareJSON orders numbers numerically, RFC 3339 strings chronologically and
// other strings lexically. Missing values sort first.
func compareJSON(a, b json.RawMessage) int {
	if len(a) == 0 || len(b) == 0 {
		return cmp.Compare(len(a), len(b))
	}
	var fa, fb float64
	if json.Unmarshal(a, &fa) == nil && json.Unmarshal(b, &fb) == nil {
		return cmp.Compare(fa, fb)
	}
	var sa, sb string
	if json.Unmarshal(a, &sa) == nil && json.Unmarshal(b, &sb) == nil {
		ta, errA := time.Parse(time.RFC3339Nano, sa)
		tb, errB := time.Parse(time.RFC3339Nano, sb)
		if errA == nil && errB == nil {
			return ta.Compare(tb)
		}
		return strings.Compare(sa, sb)
	}
	return bytes.Compare(a, b)
}
