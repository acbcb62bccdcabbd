package member

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("roster member not found")

type Repository interface {
	GetByID(ctx context.Context, id string) (Member, error)
	FindByIdentity(ctx context.Context, identityKey, orgUnit string) ([]Member, error)
	ListByOrgUnit(ctx context.Context, orgUnit string) ([]Member, error)
	Save(ctx context.Context, m Member) error
}
