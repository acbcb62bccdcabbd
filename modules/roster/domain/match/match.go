// Package match holds the outcome of resolving an imported name against the roster.
package match

import (
	"encoding/json"
	"fmt"
	"slices"
)

type Status string

const (
	StatusMatched   Status = "matched"
	StatusUnmatched Status = "unmatched"
	StatusDuplicate Status = "duplicate"
)

// Result is one of matched{EmployeeID}, unmatched{} or duplicate{EmployeeIDs}.
// Use the constructors; the zero value is unmatched.
type Result struct {
	status      Status
	employeeID  string
	employeeIDs []string
}

func Matched(employeeID string) Result {
	return Result{status: StatusMatched, employeeID: employeeID}
}

func Unmatched() Result {
	return Result{status: StatusUnmatched}
}

// Duplicate keeps the IDs sorted so equal rosters give equal results.
func Duplicate(employeeIDs []string) Result {
	ids := slices.Clone(employeeIDs)
	slices.Sort(ids)
	return Result{status: StatusDuplicate, employeeIDs: ids}
}

func (r Result) Status() Status {
	if r.status == "" {
		return StatusUnmatched
	}
	return r.status
}

func (r Result) EmployeeID() (string, bool) {
	return r.employeeID, r.status == StatusMatched
}

func (r Result) EmployeeIDs() []string {
	return slices.Clone(r.employeeIDs)
}

func (r Result) String() string {
	switch r.Status() {
	case StatusMatched:
		return "matched(" + r.employeeID + ")"
	case StatusDuplicate:
		return fmt.Sprintf("duplicate%v", r.employeeIDs)
	default:
		return "unmatched"
	}
}

type resultJSON struct {
	Status      Status   `json:"status"`
	EmployeeID  string   `json:"employeeId,omitempty"`
	EmployeeIDs []string `json:"employeeIds,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{Status: r.Status(), EmployeeID: r.employeeID, EmployeeIDs: r.employeeIDs})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var v resultJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Status {
	case StatusMatched:
		if v.EmployeeID == "" {
			return fmt.Errorf("matched result without employeeId")
		}
		*r = Matched(v.EmployeeID)
	case StatusDuplicate:
		if len(v.EmployeeIDs) < 2 {
			return fmt.Errorf("duplicate result needs at least two employeeIds, got %d", len(v.EmployeeIDs))
		}
		*r = Duplicate(v.EmployeeIDs)
	case StatusUnmatched, "":
		*r = Unmatched()
	default:
		return fmt.Errorf("unknown match status %q", v.Status)
	}
	return nil
}
