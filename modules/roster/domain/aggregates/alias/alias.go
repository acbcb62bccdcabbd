package alias

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("alias override not found")

// Alias forces an imported (name, org unit) pair onto one roster member.
type Alias struct {
	NormalizedName string
	OrgUnit        string
	EmployeeID     string
	CreatedBy      string
	CreatedAt      time.Time
}

// Key is the lookup key shared with plan entry IDs.
func (a Alias) Key() string {
	return Key(a.NormalizedName, a.OrgUnit)
}

func Key(normalizedName, orgUnit string) string {
	return normalizedName + "|" + orgUnit
}

type Repository interface {
	Get(ctx context.Context, normalizedName, orgUnit string) (Alias, error)
	Save(ctx context.Context, a Alias) error
}
