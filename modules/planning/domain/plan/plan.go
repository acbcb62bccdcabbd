package plan

import (
	"time"

	"github.com/iota-uz/utilization/modules/planning/domain/format"
	"github.com/iota-uz/utilization/pkg/isoweek"
	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

// MaxRowErrors caps the row errors kept on a plan document.
const MaxRowErrors = 200

// Layout is the column layout detected in one file's header row.
type Layout struct {
	NameColumn    int            `json:"nameColumn"`
	OrgUnitColumn int            `json:"orgUnitColumn"`
	Fields        map[string]int `json:"fields"`

	Triplets      []spreadsheet.Triplet      `json:"triplets,omitempty"`
	TripletMode   string                     `json:"tripletMode,omitempty"` // suffixed or repeated
	PeriodColumns []spreadsheet.PeriodColumn `json:"periodColumns,omitempty"`

	// Weeks holds the ISO week of every detected period, in column order.
	Weeks []isoweek.Week     `json:"weeks"`
	Empty format.EmptyPolicy `json:"emptyPolicy"`
}

// PeriodCount is the number of detected periods.
func (l *Layout) PeriodCount() int {
	if len(l.Triplets) > 0 {
		return len(l.Triplets)
	}
	return len(l.PeriodColumns)
}

// Stats buckets every non-blank row exactly once:
// Total == Matched + Unmatched + Duplicate.
type Stats struct {
	Matched   int `json:"matchedCount"`
	Unmatched int `json:"unmatchedCount"`
	Duplicate int `json:"duplicateCount"`
	Total     int `json:"totalRows"`

	// MalformedRows are rows that failed processing; they count as unmatched.
	MalformedRows    int `json:"malformedRows"`
	// InFileDuplicates repeat a name and org unit seen earlier in the same file.
	InFileDuplicates int `json:"inFileDuplicates"`
	// RosterDuplicates matched two or more roster members.
	RosterDuplicates int `json:"rosterDuplicates"`
}

func (s Stats) Consistent() bool {
	return s.Total == s.Matched+s.Unmatched+s.Duplicate
}

// Entries is the number of entry documents the stats describe: malformed rows and
// in-file duplicates produce none.
func (s Stats) Entries() int {
	return s.Total - s.MalformedRows - s.InFileDuplicates
}

// Plan is one import run over one uploaded file.
type Plan struct {
	ID     string      `json:"id"`
	Format format.Kind `json:"format"`
	// Collection is where the plan document lives; it follows from Format.
	Collection string `json:"-"`

	PeriodYear int                    `json:"periodYear"`
	PeriodWeek int                    `json:"periodWeek"`
	PeriodKey  string                 `json:"periodKey"`
	Reference  format.ReferenceSource `json:"referenceSource"`
	// GeneratedAt is the date the file declares it was produced, when it declares one.
	GeneratedAt *time.Time `json:"generatedAt"`

	SourcePath  string   `json:"sourcePath"`
	Sheet       string   `json:"sheet"`
	Layout      Layout   `json:"layout"`
	PeriodCount int      `json:"periodCount"`
	Stats       Stats    `json:"stats"`
	RowErrors   []string `json:"rowErrors"`
	// RowErrorsTruncated is set when more than MaxRowErrors rows failed.
	RowErrorsTruncated bool      `json:"rowErrorsTruncated,omitempty"`
	ImportedAt         time.Time `json:"importedAt"`
}

func (p *Plan) Period() isoweek.Week {
	return isoweek.Week{Year: p.PeriodYear, Week: p.PeriodWeek}
}

// AddRowError records a row error message, keeping at most MaxRowErrors.
func (p *Plan) AddRowError(msg string) {
	if len(p.RowErrors) >= MaxRowErrors {
		p.RowErrorsTruncated = true
		return
	}
	p.RowErrors = append(p.RowErrors, msg)
}

// ImportedEvent is published after a plan and all its entries were written.
type ImportedEvent struct {
	Plan     *Plan
	Entries  int
	UserID   string
	Duration time.Duration
}
