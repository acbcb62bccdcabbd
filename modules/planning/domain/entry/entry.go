package entry

import (
	"github.com/iota-uz/utilization/modules/roster/domain/match"
	"github.com/iota-uz/utilization/pkg/isoweek"
)

// Fields are optional descriptive columns. A nil value means the column is absent
// from the file or the cell is empty.
type Fields struct {
	Team     *string `json:"team"`
	Location *string `json:"location"`
	Grade    *string `json:"grade"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
}

// Set assigns a field by its format key. Unknown keys are ignored.
func (f *Fields) Set(key string, v *string) {
	switch key {
	case "team":
		f.Team = v
	case "location":
		f.Location = v
	case "grade":
		f.Grade = v
	case "email":
		f.Email = v
	case "role":
		f.Role = v
	}
}

// PlanPayload is one week of an Einsatzplan triplet.
type PlanPayload struct {
	Project     *string `json:"project"`
	NKV         Amount  `json:"nkv"`
	// Utilization is 100 - NKV and is not clamped: values outside 0..100 mark
	// over- or under-allocation.
	Utilization Amount  `json:"utilization"`
	Location    *string `json:"location"`
}

type WorkloadPayload struct {
	Utilization Amount `json:"utilization"`
}

// PeriodValue is one week of data for one entry.
type PeriodValue struct {
	// PeriodIndex is the 0-based week offset from the plan's reference week.
	PeriodIndex int    `json:"periodIndex"`
	IsoYear     int    `json:"isoYear"`
	IsoWeek     int    `json:"isoWeek"`
	IsoKey      string `json:"isoKey"`

	Plan     *PlanPayload     `json:"plan,omitempty"`
	Workload *WorkloadPayload `json:"workload,omitempty"`
}

func NewPeriodValue(index int, w isoweek.Week) PeriodValue {
	return PeriodValue{PeriodIndex: index, IsoYear: w.Year, IsoWeek: w.Week, IsoKey: w.Key()}
}

// Suggestion is a roster member that may be the person behind an unmatched entry.
type Suggestion struct {
	EmployeeID  string `json:"employeeId"`
	IdentityKey string `json:"identityKey"`
	DisplayName string `json:"displayName,omitempty"`
}

// Entry is one imported row resolved against the roster.
type Entry struct {
	Row            int           `json:"row"` // 1-based sheet row
	NormalizedName string        `json:"normalizedName"`
	LastName       string        `json:"lastName"`
	FirstName      string        `json:"firstName"`
	RawName        string        `json:"rawName"`
	OrgUnit        string        `json:"orgUnit"`
	Fields         Fields        `json:"fields"`
	Periods        []PeriodValue `json:"periods"`
	Match          match.Result  `json:"match"`
	Suggestions    []Suggestion  `json:"suggestions,omitempty"`
}

// Key identifies the entry within its plan and doubles as its document ID.
func (e *Entry) Key() string {
	return Key(e.NormalizedName, e.OrgUnit)
}

func Key(normalizedName, orgUnit string) string {
	return normalizedName + "|" + orgUnit
}
