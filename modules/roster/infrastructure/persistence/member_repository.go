package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"

	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/member"
	"github.com/iota-uz/utilization/pkg/docstore"
)

type MemberRepository struct {
	store docstore.Store
	coll  docstore.CollectionRef
}

func NewMemberRepository(store docstore.Store) member.Repository {
	return &MemberRepository{store: store, coll: docstore.Collection(EmployeesCollection)}
}

// GetByID is a point lookup by document ID, which for older imports is the legacy key.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (member.Member, error) {
	snap, err := r.store.Get(ctx, r.coll.Doc(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return member.Member{}, member.ErrNotFound
	}
	if err != nil {
		return member.Member{}, gerrors.Wrap(err, "failed to get roster member")
	}
	var d memberDoc
	if err := snap.DataTo(&d); err != nil {
		return member.Member{}, gerrors.Wrap(err, "failed to decode roster member")
	}
	return toDomainMember(snap.Ref.ID, d), nil
}

func (r *MemberRepository) FindByIdentity(ctx context.Context, identityKey, orgUnit string) ([]member.Member, error) {
	return r.find(ctx, []docstore.Filter{
		{Field: "identityKey", Value: identityKey},
		{Field: "orgUnit", Value: orgUnit},
	})
}

func (r *MemberRepository) ListByOrgUnit(ctx context.Context, orgUnit string) ([]member.Member, error) {
	return r.find(ctx, []docstore.Filter{{Field: "orgUnit", Value: orgUnit}})
}

func (r *MemberRepository) Save(ctx context.Context, m member.Member) error {
	if m.IsZero() {
		return gerrors.New("roster member without id")
	}
	if err := r.store.Set(ctx, r.coll.Doc(m.ID()), toMemberDoc(m)); err != nil {
		return gerrors.Wrap(err, "failed to save roster member")
	}
	return nil
}

func (r *MemberRepository) find(ctx context.Context, where []docstore.Filter) ([]member.Member, error) {
	snaps, err := r.store.Find(ctx, docstore.Query{Collection: r.coll, Where: where})
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to query roster")
	}
	out := make([]member.Member, 0, len(snaps))
	for _, snap := range snaps {
		var d memberDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode roster member")
		}
		out = append(out, toDomainMember(snap.Ref.ID, d))
	}
	return out, nil
}
