package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"

	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/alias"
	"github.com/iota-uz/utilization/pkg/docstore"
)

type AliasRepository struct {
	store docstore.Store
	coll  docstore.CollectionRef
}

func NewAliasRepository(store docstore.Store) alias.Repository {
	return &AliasRepository{store: store, coll: docstore.Collection(AliasesCollection)}
}

func (r *AliasRepository) Get(ctx context.Context, normalizedName, orgUnit string) (alias.Alias, error) {
	snap, err := r.store.Get(ctx, r.coll.Doc(alias.Key(normalizedName, orgUnit)))
	if errors.Is(err, docstore.ErrNotFound) {
		return alias.Alias{}, alias.ErrNotFound
	}
	if err != nil {
		return alias.Alias{}, gerrors.Wrap(err, "failed to get alias override")
	}
	var d aliasDoc
	if err := snap.DataTo(&d); err != nil {
		return alias.Alias{}, gerrors.Wrap(err, "failed to decode alias override")
	}
	return toDomainAlias(d), nil
}

func (r *AliasRepository) Save(ctx context.Context, a alias.Alias) error {
	if err := r.store.Set(ctx, r.coll.Doc(a.Key()), toAliasDoc(a)); err != nil {
		return gerrors.Wrap(err, "failed to save alias override")
	}
	return nil
}
