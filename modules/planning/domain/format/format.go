// Package format describes the spreadsheet exports the planning import understands.
package format

import (
	"fmt"

	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

type Kind string

const (
	KindEinsatzplan Kind = "einsatzplan"
	KindWorkload    Kind = "auslastung"
)

// EmptyPolicy decides what an empty numeric period cell means.
type EmptyPolicy string

const (
	EmptyAsNull EmptyPolicy = "null"
	EmptyAsZero EmptyPolicy = "zero"
)

// PeriodLayout names how period data is laid out across columns.
type PeriodLayout string

const (
	// PeriodsTriplets repeats a project / percent / location block per week.
	PeriodsTriplets PeriodLayout = "triplets"
	// PeriodsWeekColumns has one "KW n" column per week.
	PeriodsWeekColumns PeriodLayout = "week-columns"
)

// ReferenceSource names where the reference week of a file comes from.
type ReferenceSource string

const (
	// ReferenceDeclaration parses "KW n (yyyy) ... Stand: d.m.yyyy" from a header cell.
	ReferenceDeclaration ReferenceSource = "declaration"
	// ReferenceFirstColumn takes the first week column and the current calendar year.
	ReferenceFirstColumn ReferenceSource = "first-week-column"
)

// Field is an optional descriptive column copied onto every entry.
type Field struct {
	Key    string `toml:"key"`
	Header string `toml:"header"`
}

type Format struct {
	Kind       Kind   `toml:"-"`
	Collection string `toml:"collection"`
	Sheet      string `toml:"sheet"`
	// DeclarationRow is the 0-based row holding the declaration text, or -1.
	DeclarationRow int `toml:"declaration_row"`
	HeaderRow      int `toml:"header_row"`
	DataOffset     int `toml:"data_offset"`

	NameHeader    string  `toml:"name_header"`
	OrgUnitHeader string  `toml:"org_unit_header"`
	Fields        []Field `toml:"fields"`

	Periods   PeriodLayout             `toml:"-"`
	Triplet   spreadsheet.TripletNames `toml:"-"`
	Empty     EmptyPolicy              `toml:"-"`
	Reference ReferenceSource          `toml:"-"`
}

// Einsatzplan is the staffing plan export: one project / NKV / location triplet per week
// starting at the declared week.
func Einsatzplan() Format {
	return Format{
		Kind:           KindEinsatzplan,
		Collection:     "einsatzplaene",
		Sheet:          "Einsatzplan",
		DeclarationRow: 0,
		HeaderRow:      2,
		DataOffset:     3,
		NameHeader:     "Name",
		OrgUnitHeader:  "CC",
		Fields: []Field{
			{Key: "team", Header: "Team"},
			{Key: "location", Header: "Standort"},
			{Key: "grade", Header: "LBS"},
			{Key: "email", Header: "E-Mail"},
			{Key: "role", Header: "Rolle"},
		},
		Periods:   PeriodsTriplets,
		Triplet:   spreadsheet.TripletNames{A: "Proj", B: "NKV (%)", C: "Ort"},
		Empty:     EmptyAsNull,
		Reference: ReferenceDeclaration,
	}
}

// Workload is the utilization export with one "KW n" column per week.
func Workload() Format {
	return Format{
		Kind:           KindWorkload,
		Collection:     "auslastungen",
		Sheet:          "Auslastung",
		DeclarationRow: -1,
		HeaderRow:      0,
		DataOffset:     1,
		NameHeader:     "Name",
		OrgUnitHeader:  "CC",
		Fields: []Field{
			{Key: "team", Header: "Team"},
			{Key: "location", Header: "Standort"},
			{Key: "grade", Header: "LBS"},
		},
		Periods:   PeriodsWeekColumns,
		Empty:     EmptyAsZero,
		Reference: ReferenceFirstColumn,
	}
}

// Validate rejects formats whose row indexes cannot describe a sheet.
func (f Format) Validate() error {
	switch {
	case f.Kind == "":
		return fmt.Errorf("format without kind")
	case f.Collection == "":
		return fmt.Errorf("format %s: collection is required", f.Kind)
	case f.Sheet == "":
		return fmt.Errorf("format %s: sheet is required", f.Kind)
	case f.HeaderRow < 0:
		return fmt.Errorf("format %s: header row must be >= 0", f.Kind)
	case f.DataOffset <= f.HeaderRow:
		return fmt.Errorf("format %s: data offset %d must follow header row %d", f.Kind, f.DataOffset, f.HeaderRow)
	case f.Reference == ReferenceDeclaration && (f.DeclarationRow < 0 || f.DeclarationRow >= f.HeaderRow):
		return fmt.Errorf("format %s: declaration row %d must precede header row %d", f.Kind, f.DeclarationRow, f.HeaderRow)
	case f.NameHeader == "" || f.OrgUnitHeader == "":
		return fmt.Errorf("format %s: name and org unit headers are required", f.Kind)
	}
	return nil
}
