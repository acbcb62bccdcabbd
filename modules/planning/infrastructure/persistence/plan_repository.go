package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"

	"github.com/iota-uz/utilization/modules/planning/domain/entry"
	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/pkg/docstore"
)

type PlanRepository struct {
	store docstore.Store
}

func NewPlanRepository(store docstore.Store) plan.Repository {
	return &PlanRepository{store: store}
}

func (r *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	if err := r.store.Set(ctx, planRef(p.Collection, p.ID), p); err != nil {
		return gerrors.Wrap(err, "failed to write plan")
	}
	return nil
}

func (r *PlanRepository) AddEntries(ctx context.Context, p *plan.Plan, entries []*entry.Entry) error {
	entriesColl := planRef(p.Collection, p.ID).Collection(EntriesCollection)
	batch := docstore.NewBatch()
	for _, e := range entries {
		batch.Set(entriesColl.Doc(e.Key()), toEntryDoc(e))
	}
	if err := r.store.Commit(ctx, batch); err != nil {
		return gerrors.Wrap(err, "failed to write entries")
	}
	return nil
}

func (r *PlanRepository) Get(ctx context.Context, collection, id string) (*plan.Plan, error) {
	snap, err := r.store.Get(ctx, planRef(collection, id))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, plan.ErrNotFound
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to get plan")
	}
	return decodePlan(collection, snap)
}

func (r *PlanRepository) Latest(ctx context.Context, collection string) (*plan.Plan, error) {
	snaps, err := r.store.Find(ctx, docstore.Query{
		Collection: docstore.Collection(collection),
		OrderBy:    docstore.CreateTime,
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to query latest plan")
	}
	if len(snaps) == 0 {
		return nil, plan.ErrNotFound
	}
	return decodePlan(collection, snaps[0])
}

func (r *PlanRepository) Entries(ctx context.Context, collection, planID string, filter plan.EntryFilter) ([]*entry.Entry, error) {
	var where []docstore.Filter
	if filter.Status != "" {
		where = append(where, docstore.Filter{Field: "matchStatus", Value: filter.Status})
	}
	if filter.OrgUnit != "" {
		where = append(where, docstore.Filter{Field: "orgUnit", Value: filter.OrgUnit})
	}
	snaps, err := r.store.Find(ctx, docstore.Query{
		Collection: planRef(collection, planID).Collection(EntriesCollection),
		Where:      where,
		OrderBy:    "row",
	})
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to query entries")
	}
	out := make([]*entry.Entry, 0, len(snaps))
	for _, snap := range snaps {
		var e entry.Entry
		if err := snap.DataTo(&e); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode entry")
		}
		out = append(out, &e)
	}
	return out, nil
}

func planRef(collection, id string) docstore.DocumentRef {
	return docstore.Collection(collection).Doc(id)
}

func decodePlan(collection string, snap docstore.Snapshot) (*plan.Plan, error) {
	var p plan.Plan
	if err := snap.DataTo(&p); err != nil {
		return nil, gerrors.Wrap(err, "failed to decode plan")
	}
	p.Collection = collection
	return &p, nil
}
