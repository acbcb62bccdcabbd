package member

import (
	"strings"
)

// Member is a roster entry. Members are maintained by a separate roster import and
// are read-only to plan imports.
type Member struct {
	id          string
	identityKey string
	orgUnit     string
	displayName string
	team        string
	grade       string
	location    string
	email       string
}

type Attributes struct {
	DisplayName string
	Team        string
	Grade       string
	Location    string
	Email       string
}

func New(id, identityKey, orgUnit string, attrs Attributes) Member {
	return Member{
		id:          strings.TrimSpace(id),
		identityKey: identityKey,
		orgUnit:     strings.TrimSpace(orgUnit),
		displayName: strings.TrimSpace(attrs.DisplayName),
		team:        strings.TrimSpace(attrs.Team),
		grade:       strings.TrimSpace(attrs.Grade),
		location:    strings.TrimSpace(attrs.Location),
		email:       strings.TrimSpace(attrs.Email),
	}
}

func (m Member) ID() string          { return m.id }
func (m Member) IdentityKey() string { return m.identityKey }
func (m Member) OrgUnit() string     { return m.orgUnit }
func (m Member) DisplayName() string { return m.displayName }
func (m Member) Team() string        { return m.team }
func (m Member) Grade() string       { return m.grade }
func (m Member) Location() string    { return m.location }
func (m Member) Email() string       { return m.email }
func (m Member) IsZero() bool        { return m.id == "" }

// LegacyKey is the document ID older roster imports used: "<identity>|<lower org unit>".
func LegacyKey(identityKey, orgUnit string) string {
	return identityKey + "|" + strings.ToLower(strings.TrimSpace(orgUnit))
}
