package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iota-uz/utilization/modules/planning/domain/format"
	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/pkg/isoweek"
	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

var (
	ErrSheetMissing  = errors.New("required sheet missing")
	ErrTooFewRows    = errors.New("sheet has fewer rows than required")
	ErrNoPeriods     = errors.New("no period columns detected")
	ErrNoDeclaration = errors.New("reference period declaration unreadable")
)

// DetectLayout locates the identity, org unit, optional and period columns of a
// header row. Missing identity columns are left at -1 and surface as row errors.
func DetectLayout(f format.Format, headers []string) (*plan.Layout, error) {
	idx := spreadsheet.HeaderIndex(headers)
	column := func(name string) int {
		if i, ok := idx[strings.ToLower(strings.TrimSpace(name))]; ok {
			return i
		}
		return -1
	}

	l := &plan.Layout{
		NameColumn:    column(f.NameHeader),
		OrgUnitColumn: column(f.OrgUnitHeader),
		Fields:        make(map[string]int, len(f.Fields)),
		Empty:         f.Empty,
	}
	for _, field := range f.Fields {
		if i := column(field.Header); i >= 0 {
			l.Fields[field.Key] = i
		}
	}

	switch f.Periods {
	case format.PeriodsTriplets:
		l.Triplets, l.TripletMode = detectTriplets(headers, f.Triplet)
	case format.PeriodsWeekColumns:
		l.PeriodColumns = spreadsheet.DetectPeriodColumns(headers)
	default:
		return nil, fmt.Errorf("format %s: unknown period layout %q", f.Kind, f.Periods)
	}
	if l.PeriodCount() == 0 {
		return nil, fmt.Errorf("%w in sheet %q", ErrNoPeriods, f.Sheet)
	}
	return l, nil
}

// detectTriplets prefers suffixed headers and falls back to verbatim repeats when
// those find more periods.
func detectTriplets(headers []string, names spreadsheet.TripletNames) ([]spreadsheet.Triplet, string) {
	suffixed := spreadsheet.DetectTriplets(headers, names)
	if len(suffixed) <= 1 {
		if repeated := spreadsheet.DetectRepeatedTriplets(headers, names, spreadsheet.RepeatWindow); len(repeated) > len(suffixed) {
			return repeated, "repeated"
		}
	}
	return suffixed, "suffixed"
}

// Reference is the week a file's period index 0 refers to.
type Reference struct {
	Week        isoweek.Week
	Source      format.ReferenceSource
	GeneratedAt *time.Time
}

// ResolveReference derives the reference week and fills l.Weeks.
//
// Week-column files carry no year: the first column's week is placed in the current
// calendar year and every later column on the next matching week at or after the
// previous one, so headers running past week 52/53 roll into the next year.
func ResolveReference(f format.Format, rows [][]spreadsheet.Cell, l *plan.Layout, now time.Time) (Reference, error) {
	switch f.Reference {
	case format.ReferenceDeclaration:
		text := declarationText(rows, f.DeclarationRow)
		decl, err := isoweek.ParseDeclaration(text)
		if err != nil {
			return Reference{}, fmt.Errorf("%w: row %d %q: %w", ErrNoDeclaration, f.DeclarationRow+1, text, err)
		}
		ref := isoweek.Of(decl.Period().Monday())
		generatedAt := decl.GeneratedAt
		l.Weeks = make([]isoweek.Week, l.PeriodCount())
		for i := range l.Weeks {
			l.Weeks[i], _ = isoweek.Offset(ref.Year, ref.Week, i)
		}
		return Reference{Week: ref, Source: f.Reference, GeneratedAt: &generatedAt}, nil

	case format.ReferenceFirstColumn:
		if len(l.PeriodColumns) == 0 {
			return Reference{}, ErrNoPeriods
		}
		first := l.PeriodColumns[0]
		ref := isoweek.Of(isoweek.StartOfWeek(now.Year(), first.Week))
		l.Weeks = make([]isoweek.Week, len(l.PeriodColumns))
		l.Weeks[0] = ref
		for i := 1; i < len(l.PeriodColumns); i++ {
			w, ok := isoweek.NextWithNumber(l.Weeks[i-1], l.PeriodColumns[i].Week)
			if !ok {
				return Reference{}, fmt.Errorf("%w: cannot place KW %d", ErrNoPeriods, l.PeriodColumns[i].Week)
			}
			l.Weeks[i] = w
		}
		return Reference{Week: ref, Source: f.Reference}, nil
	}
	return Reference{}, fmt.Errorf("format %s: unknown reference source %q", f.Kind, f.Reference)
}

// declarationText is the first non-empty cell of the declaration row.
func declarationText(rows [][]spreadsheet.Cell, row int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	for _, c := range rows[row] {
		if !c.IsEmpty() {
			return c.String()
		}
	}
	return ""
}
