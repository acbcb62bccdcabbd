package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/alias"
	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/member"
	"github.com/iota-uz/utilization/pkg/eventbus"
)

var (
	ErrUnknownEmployee = errors.New("employee does not exist")
	ErrInvalidAlias    = errors.New("invalid alias override")
)

// AliasResolvedEvent is published after an alias override is stored.
type AliasResolvedEvent struct {
	Alias alias.Alias
}

type AliasService struct {
	aliases   alias.Repository
	members   member.Repository
	publisher eventbus.EventBus
	now       func() time.Time
}

func NewAliasService(aliases alias.Repository, members member.Repository, publisher eventbus.EventBus) *AliasService {
	return &AliasService{aliases: aliases, members: members, publisher: publisher, now: time.Now}
}

// Resolve forces normalizedName in orgUnit onto employeeID for every later import.
func (s *AliasService) Resolve(ctx context.Context, normalizedName, orgUnit, employeeID, createdBy string) (alias.Alias, error) {
	normalizedName = strings.TrimSpace(normalizedName)
	orgUnit = strings.TrimSpace(orgUnit)
	employeeID = strings.TrimSpace(employeeID)
	switch {
	case normalizedName == "" || !strings.Contains(normalizedName, "|"):
		return alias.Alias{}, fmt.Errorf("%w: name %q is not a normalized \"last|first\" key", ErrInvalidAlias, normalizedName)
	case orgUnit == "":
		return alias.Alias{}, fmt.Errorf("%w: org unit is required", ErrInvalidAlias)
	case employeeID == "":
		return alias.Alias{}, fmt.Errorf("%w: employee id is required", ErrInvalidAlias)
	}

	if _, err := s.members.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, member.ErrNotFound) {
			return alias.Alias{}, fmt.Errorf("%w: %s", ErrUnknownEmployee, employeeID)
		}
		return alias.Alias{}, err
	}

	a := alias.Alias{
		NormalizedName: normalizedName,
		OrgUnit:        orgUnit,
		EmployeeID:     employeeID,
		CreatedBy:      createdBy,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.aliases.Save(ctx, a); err != nil {
		return alias.Alias{}, err
	}
	if s.publisher != nil {
		s.publisher.Publish(&AliasResolvedEvent{Alias: a})
	}
	return a, nil
}
