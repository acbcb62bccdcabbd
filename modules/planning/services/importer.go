package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/utilization/modules/planning/domain/entry"
	"github.com/iota-uz/utilization/modules/planning/domain/format"
	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/member"
	"github.com/iota-uz/utilization/modules/roster/domain/match"
	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

// DefaultBatchSize is the number of entries committed per write batch.
const DefaultBatchSize = 100

// PartialWriteError reports entry batches that failed after the plan document and
// earlier batches were committed. Committed documents are not rolled back.
type PartialWriteError struct {
	PlanID  string
	Written int
	Total   int
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("plan %s: wrote %d of %d entries: %v", e.PlanID, e.Written, e.Total, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// Suggester proposes roster members for an unmatched name.
type Suggester interface {
	Suggest(ctx context.Context, normalizedName, orgUnit string, limit int) []member.Member
}

type ImporterOption func(*Importer)

func WithBatchSize(n int) ImporterOption {
	return func(i *Importer) {
		if n > 0 && n <= DefaultBatchSize {
			i.batchSize = n
		}
	}
}

// WithSuggestions stores up to limit roster suggestions on every unmatched entry.
func WithSuggestions(s Suggester, limit int) ImporterOption {
	return func(i *Importer) {
		i.suggester = s
		i.suggestionLimit = limit
	}
}

func WithClock(now func() time.Time) ImporterOption {
	return func(i *Importer) {
		i.now = now
	}
}

func WithIDGenerator(newID func() string) ImporterOption {
	return func(i *Importer) {
		i.newID = newID
	}
}

// Importer runs one spreadsheet through detection, row processing, matching
// and persistence.
type Importer struct {
	repo            plan.Repository
	rows            *RowProcessor
	suggester       Suggester
	suggestionLimit int
	batchSize       int
	now             func() time.Time
	newID           func() string
	log             *logrus.Logger
}

func NewImporter(repo plan.Repository, matcher Matcher, log *logrus.Logger, opts ...ImporterOption) *Importer {
	i := &Importer{
		repo:      repo,
		rows:      NewRowProcessor(matcher),
		batchSize: DefaultBatchSize,
		now:       time.Now,
		newID:     uuid.NewString,
		log:       log,
	}
	if i.log == nil {
		i.log = logrus.StandardLogger()
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportFile imports blob as format f. Structural problems abort before anything is
// written. Malformed rows are recorded on the plan and counted as unmatched.
//
// The plan document is written first, then entries in sequential batches. A failed
// plan write returns the error alone; a failed entry batch returns the plan together
// with a *PartialWriteError.
func (i *Importer) ImportFile(ctx context.Context, blob []byte, f format.Format, sourcePath string) (*plan.Plan, error) {
	wb, err := spreadsheet.OpenBytes(blob)
	if err != nil {
		return nil, err
	}
	defer i.closeWorkbook(wb, sourcePath)

	rows, err := wb.Rows(f.Sheet)
	if errors.Is(err, spreadsheet.ErrSheetNotFound) {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetMissing, f.Sheet, strings.Join(wb.SheetNames(), ", "))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) <= f.HeaderRow {
		return nil, fmt.Errorf("%w: sheet %q has %d rows, header expected on row %d", ErrTooFewRows, f.Sheet, len(rows), f.HeaderRow+1)
	}

	layout, err := DetectLayout(f, spreadsheet.Strings(rows[f.HeaderRow]))
	if err != nil {
		return nil, err
	}
	ref, err := ResolveReference(f, rows, layout, i.now())
	if err != nil {
		return nil, err
	}

	p := &plan.Plan{
		ID:          i.newID(),
		Format:      f.Kind,
		Collection:  f.Collection,
		PeriodYear:  ref.Week.Year,
		PeriodWeek:  ref.Week.Week,
		PeriodKey:   ref.Week.Key(),
		Reference:   ref.Source,
		GeneratedAt: ref.GeneratedAt,
		SourcePath:  sourcePath,
		Sheet:       f.Sheet,
		Layout:      *layout,
		PeriodCount: layout.PeriodCount(),
		RowErrors:   []string{},
	}
	entries := i.processRows(ctx, rows, f.DataOffset, p, layout)
	p.ImportedAt = i.now().UTC()

	if err := i.persist(ctx, p, entries); err != nil {
		var partial *PartialWriteError
		if errors.As(err, &partial) {
			return p, err
		}
		return nil, err
	}
	i.log.WithFields(logrus.Fields{
		"plan":      p.ID,
		"format":    p.Format,
		"period":    p.PeriodKey,
		"total":     p.Stats.Total,
		"matched":   p.Stats.Matched,
		"unmatched": p.Stats.Unmatched,
		"duplicate": p.Stats.Duplicate,
	}).Info("plan imported")
	return p, nil
}

// processRows buckets every non-blank data row exactly once into p.Stats and returns
// the entries to persist in sheet order.
func (i *Importer) processRows(ctx context.Context, rows [][]spreadsheet.Cell, offset int, p *plan.Plan, l *plan.Layout) []*entry.Entry {
	seen := make(map[string]int)
	var entries []*entry.Entry

	for idx := offset; idx < len(rows); idx++ {
		row := rows[idx]
		if spreadsheet.IsBlank(row) {
			continue
		}
		rowNumber := idx + 1
		p.Stats.Total++

		e, err := i.rows.ProcessRow(ctx, row, rowNumber, l, p.Period())
		if err != nil {
			p.Stats.Unmatched++
			p.Stats.MalformedRows++
			p.AddRowError(err.Error())
			continue
		}

		key := e.Key()
		if first, dup := seen[key]; dup {
			p.Stats.Duplicate++
			p.Stats.InFileDuplicates++
			p.AddRowError(fmt.Sprintf("row %d: duplicate of row %d (%s)", rowNumber, first, key))
			continue
		}
		seen[key] = rowNumber

		switch e.Match.Status() {
		case match.StatusMatched:
			p.Stats.Matched++
		case match.StatusDuplicate:
			p.Stats.Duplicate++
			p.Stats.RosterDuplicates++
		default:
			p.Stats.Unmatched++
			e.Suggestions = i.suggest(ctx, e)
		}
		entries = append(entries, e)
	}
	return entries
}

func (i *Importer) suggest(ctx context.Context, e *entry.Entry) []entry.Suggestion {
	if i.suggester == nil || i.suggestionLimit <= 0 {
		return nil
	}
	members := i.suggester.Suggest(ctx, e.NormalizedName, e.OrgUnit, i.suggestionLimit)
	if len(members) == 0 {
		return nil
	}
	out := make([]entry.Suggestion, len(members))
	for j, m := range members {
		out[j] = entry.Suggestion{
			EmployeeID:  m.ID(),
			IdentityKey: m.IdentityKey(),
			DisplayName: m.DisplayName(),
		}
	}
	return out
}

func (i *Importer) persist(ctx context.Context, p *plan.Plan, entries []*entry.Entry) error {
	if err := i.repo.Create(ctx, p); err != nil {
		return err
	}
	for start := 0; start < len(entries); start += i.batchSize {
		end := min(start+i.batchSize, len(entries))
		if err := i.repo.AddEntries(ctx, p, entries[start:end]); err != nil {
			return &PartialWriteError{PlanID: p.ID, Written: start, Total: len(entries), Err: err}
		}
	}
	return nil
}

func (i *Importer) closeWorkbook(wb io.Closer, sourcePath string) {
	if err := wb.Close(); err != nil {
		i.log.WithError(err).WithField("path", sourcePath).Debug("failed to close workbook")
	}
}
