package persistence

import (
	"time"

	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/alias"
	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/member"
)

const (
	EmployeesCollection = "employees"
	AliasesCollection   = "employee_aliases"
)

type memberDoc struct {
	IdentityKey string `json:"identityKey"`
	OrgUnit     string `json:"orgUnit"`
	DisplayName string `json:"displayName,omitempty"`
	Team        string `json:"team,omitempty"`
	Grade       string `json:"grade,omitempty"`
	Location    string `json:"location,omitempty"`
	Email       string `json:"email,omitempty"`
}

func toMemberDoc(m member.Member) memberDoc {
	return memberDoc{
		IdentityKey: m.IdentityKey(),
		OrgUnit:     m.OrgUnit(),
		DisplayName: m.DisplayName(),
		Team:        m.Team(),
		Grade:       m.Grade(),
		Location:    m.Location(),
		Email:       m.Email(),
	}
}

func toDomainMember(id string, d memberDoc) member.Member {
	return member.New(id, d.IdentityKey, d.OrgUnit, member.Attributes{
		DisplayName: d.DisplayName,
		Team:        d.Team,
		Grade:       d.Grade,
		Location:    d.Location,
		Email:       d.Email,
	})
}

type aliasDoc struct {
	NormalizedName string    `json:"normalizedName"`
	OrgUnit        string    `json:"orgUnit"`
	EmployeeID     string    `json:"employeeId"`
	CreatedBy      string    `json:"createdBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toAliasDoc(a alias.Alias) aliasDoc {
	return aliasDoc{
		NormalizedName: a.NormalizedName,
		OrgUnit:        a.OrgUnit,
		EmployeeID:     a.EmployeeID,
		CreatedBy:      a.CreatedBy,
		CreatedAt:      a.CreatedAt.UTC(),
	}
}

func toDomainAlias(d aliasDoc) alias.Alias {
	return alias.Alias{
		NormalizedName: d.NormalizedName,
		OrgUnit:        d.OrgUnit,
		EmployeeID:     d.EmployeeID,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      d.CreatedAt,
	}
}
