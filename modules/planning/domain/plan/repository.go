package plan

import (
	"context"
	"errors"

	"github.com/iota-uz/utilization/modules/planning/domain/entry"
	"github.com/iota-uz/utilization/modules/roster/domain/match"
)

var ErrNotFound = errors.New("plan not found")

// EntryFilter narrows an entry listing. Zero fields match everything.
type EntryFilter struct {
	Status  match.Status
	OrgUnit string
}

type Repository interface {
	// Create writes the plan document.
	Create(ctx context.Context, p *Plan) error
	// AddEntries writes entries under p in one atomic batch.
	AddEntries(ctx context.Context, p *Plan, entries []*entry.Entry) error
	Get(ctx context.Context, collection, id string) (*Plan, error)
	// Latest returns the plan created most recently in collection.
	Latest(ctx context.Context, collection string) (*Plan, error)
	Entries(ctx context.Context, collection, planID string, filter EntryFilter) ([]*entry.Entry, error)
}
