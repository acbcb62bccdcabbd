package services

import (
	"context"
	"errors"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/alias"
	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/member"
	"github.com/iota-uz/utilization/modules/roster/domain/match"
)

// maxSuggestDistance bounds the edit distance for roster suggestions.
const maxSuggestDistance = 3

// Matcher resolves a normalized name and org unit against the roster:
// alias override, then unique roster match, then the legacy document key.
type Matcher struct {
	members member.Repository
	aliases alias.Repository
	log     *logrus.Logger
}

func NewMatcher(members member.Repository, aliases alias.Repository, log *logrus.Logger) *Matcher {
	return &Matcher{members: members, aliases: aliases, log: log}
}

// Match never fails. Lookup errors are logged and yield unmatched.
func (m *Matcher) Match(ctx context.Context, normalizedName, orgUnit string) match.Result {
	a, err := m.aliases.Get(ctx, normalizedName, orgUnit)
	switch {
	case err == nil:
		return match.Matched(a.EmployeeID)
	case !errors.Is(err, alias.ErrNotFound):
		m.lookupFailed("alias", alias.Key(normalizedName, orgUnit), err)
		return match.Unmatched()
	}

	hits, err := m.members.FindByIdentity(ctx, normalizedName, orgUnit)
	if err != nil {
		m.lookupFailed("roster", alias.Key(normalizedName, orgUnit), err)
		return match.Unmatched()
	}
	switch len(hits) {
	case 0:
	case 1:
		return match.Matched(hits[0].ID())
	default:
		ids := make([]string, len(hits))
		for i, h := range hits {
			ids[i] = h.ID()
		}
		return match.Duplicate(ids)
	}

	legacy := member.LegacyKey(normalizedName, orgUnit)
	found, err := m.members.GetByID(ctx, legacy)
	switch {
	case err == nil:
		return match.Matched(found.ID())
	case !errors.Is(err, member.ErrNotFound):
		m.lookupFailed("legacy", legacy, err)
	}
	return match.Unmatched()
}

// Suggest ranks roster members of orgUnit whose identity key is close to normalizedName.
func (m *Matcher) Suggest(ctx context.Context, normalizedName, orgUnit string, limit int) []member.Member {
	if limit <= 0 {
		return nil
	}
	candidates, err := m.members.ListByOrgUnit(ctx, orgUnit)
	if err != nil {
		m.lookupFailed("suggest", orgUnit, err)
		return nil
	}
	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = c.IdentityKey()
	}

	distance := make(map[int]int, len(candidates))
	for _, r := range fuzzy.RankFindNormalizedFold(normalizedName, keys) {
		distance[r.OriginalIndex] = r.Distance
	}
	for i, k := range keys {
		if _, ok := distance[i]; ok {
			continue
		}
		if d := fuzzy.LevenshteinDistance(normalizedName, k); d <= maxSuggestDistance {
			distance[i] = d
		}
	}

	idx := make([]int, 0, len(distance))
	for i := range distance {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		da, db := distance[idx[a]], distance[idx[b]]
		if da != db {
			return da < db
		}
		return candidates[idx[a]].ID() < candidates[idx[b]].ID()
	})
	if len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]member.Member, len(idx))
	for i, j := range idx {
		out[i] = candidates[j]
	}
	return out
}

func (m *Matcher) lookupFailed(tier, key string, err error) {
	if m.log == nil {
		return
	}
	m.log.WithError(err).WithFields(logrus.Fields{
		"tier": tier,
		"key":  key,
	}).Warn("roster lookup failed, treating as unmatched")
}
