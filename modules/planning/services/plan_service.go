package services

import (
	"context"

	"github.com/iota-uz/utilization/modules/planning/domain/entry"
	"github.com/iota-uz/utilization/modules/planning/domain/format"
	"github.com/iota-uz/utilization/modules/planning/domain/plan"
)

// PlanService is the read side over imported plans.
type PlanService struct {
	repo plan.Repository
}

func NewPlanService(repo plan.Repository) *PlanService {
	return &PlanService{repo: repo}
}

// Latest returns the most recently created plan of format f.
func (s *PlanService) Latest(ctx context.Context, f format.Format) (*plan.Plan, error) {
	return s.repo.Latest(ctx, f.Collection)
}

// Entries lists the entries of planID, or of the latest plan when planID is empty.
func (s *PlanService) Entries(ctx context.Context, f format.Format, planID string, filter plan.EntryFilter) (*plan.Plan, []*entry.Entry, error) {
	var (
		p   *plan.Plan
		err error
	)
	if planID == "" {
		p, err = s.repo.Latest(ctx, f.Collection)
	} else {
		p, err = s.repo.Get(ctx, f.Collection, planID)
	}
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.repo.Entries(ctx, f.Collection, p.ID, filter)
	if err != nil {
		return nil, nil, err
	}
	return p, entries, nil
}
