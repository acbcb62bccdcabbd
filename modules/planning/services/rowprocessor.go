package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/utilization/modules/planning/domain/entry"
	"github.com/iota-uz/utilization/modules/planning/domain/format"
	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/modules/roster/domain/match"
	"github.com/iota-uz/utilization/modules/roster/domain/personname"
	"github.com/iota-uz/utilization/pkg/isoweek"
	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

var (
	ErrMissingName      = errors.New("missing name")
	ErrMissingOrgUnit   = errors.New("missing org unit")
	ErrOrgUnitSeparator = errors.New("org unit must not contain \"|\"")
)

var hundred = decimal.NewFromInt(100)

// RowError is a malformed-input failure scoped to one sheet row.
type RowError struct {
	Row int // 1-based sheet row
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Matcher resolves a normalized name within an org unit against the roster.
type Matcher interface {
	Match(ctx context.Context, normalizedName, orgUnit string) match.Result
}

// RowProcessor turns one data row into an entry.
type RowProcessor struct {
	matcher Matcher
}

func NewRowProcessor(matcher Matcher) *RowProcessor {
	return &RowProcessor{matcher: matcher}
}

// ProcessRow parses identity, optional fields and every period of row. Any failure
// is returned as a *RowError and no entry is produced. Unparseable period values
// become null and do not fail the row.
func (p *RowProcessor) ProcessRow(
	ctx context.Context,
	row []spreadsheet.Cell,
	rowNumber int,
	l *plan.Layout,
	ref isoweek.Week,
) (*entry.Entry, error) {
	fail := func(err error) (*entry.Entry, error) {
		return nil, &RowError{Row: rowNumber, Err: err}
	}

	rawName := cellAt(row, l.NameColumn).String()
	if rawName == "" {
		return fail(ErrMissingName)
	}
	name, err := personname.Parse(rawName)
	if err != nil {
		return fail(fmt.Errorf("%w: %q", err, rawName))
	}

	orgUnit := cellAt(row, l.OrgUnitColumn).String()
	switch {
	case orgUnit == "":
		return fail(ErrMissingOrgUnit)
	case strings.Contains(orgUnit, personname.KeySeparator):
		return fail(fmt.Errorf("%w: %q", ErrOrgUnitSeparator, orgUnit))
	}

	e := &entry.Entry{
		Row:            rowNumber,
		NormalizedName: name.NormalizedKey,
		LastName:       name.LastName,
		FirstName:      name.FirstName,
		RawName:        name.RawName,
		OrgUnit:        orgUnit,
	}
	for key, col := range l.Fields {
		e.Fields.Set(key, optionalText(cellAt(row, col)))
	}

	e.Periods = make([]entry.PeriodValue, 0, l.PeriodCount())
	if len(l.Triplets) > 0 {
		for i, t := range l.Triplets {
			pv := entry.NewPeriodValue(isoweek.Between(ref, l.Weeks[i]), l.Weeks[i])
			nkv := amount(cellAt(row, t.B), l.Empty)
			pv.Plan = &entry.PlanPayload{
				Project:     optionalText(cellAt(row, t.A)),
				NKV:         nkv,
				Utilization: utilizationFromNKV(nkv),
				Location:    optionalText(cellAt(row, t.C)),
			}
			e.Periods = append(e.Periods, pv)
		}
	} else {
		for i, pc := range l.PeriodColumns {
			pv := entry.NewPeriodValue(isoweek.Between(ref, l.Weeks[i]), l.Weeks[i])
			pv.Workload = &entry.WorkloadPayload{Utilization: amount(cellAt(row, pc.Index), l.Empty)}
			e.Periods = append(e.Periods, pv)
		}
	}

	e.Match = p.matcher.Match(ctx, e.NormalizedName, e.OrgUnit)
	return e, nil
}

func cellAt(row []spreadsheet.Cell, i int) spreadsheet.Cell {
	if i < 0 || i >= len(row) {
		return spreadsheet.Empty
	}
	return row[i]
}

func optionalText(c spreadsheet.Cell) *string {
	if c.IsEmpty() {
		return nil
	}
	s := c.String()
	return &s
}

// amount coerces a period cell. Only empty cells follow the policy; text that is not
// a number is always null.
func amount(c spreadsheet.Cell, policy format.EmptyPolicy) entry.Amount {
	if c.IsEmpty() {
		if policy == format.EmptyAsZero {
			return entry.AmountOf(decimal.Zero)
		}
		return entry.Null
	}
	if d, ok := c.Decimal(); ok {
		return entry.AmountOf(d)
	}
	return entry.Null
}

// utilizationFromNKV is 100 - NKV, unclamped.
func utilizationFromNKV(nkv entry.Amount) entry.Amount {
	d, ok := nkv.Decimal()
	if !ok {
		return entry.Null
	}
	return entry.AmountOf(hundred.Sub(d))
}
